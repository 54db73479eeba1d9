// Package markup bridges normalized text and HTML: text fields stored as HTML are
// turned into Markdown before conversion, and converted text can be previewed as
// HTML.
package markup

import (
	"bytes"
	"io"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// htmlConverter keeps characters as written: escaping markdown symbols would
// change backslashes, underscores and carets inside math.
var htmlConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
	),
	converter.WithEscapeMode(converter.EscapeModeDisabled),
)

// previewParser is a goldmark instance with GFM tables.
var previewParser = goldmark.New(
	goldmark.WithExtensions(extension.Table),
)

// FromHTML converts an HTML fragment to Markdown.
func FromHTML(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}

	markdown, err := htmlConverter.ConvertString(html)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(markdown), nil
}

// Preview renders Markdown to an HTML fragment.
func Preview(w io.Writer, markdown string) error {
	return previewParser.Convert([]byte(markdown), w)
}

// PreviewString renders Markdown to an HTML string.
func PreviewString(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := Preview(&buf, markdown); err != nil {
		return "", err
	}

	return buf.String(), nil
}

const pageHeader = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>`

// Page renders Markdown to a standalone HTML page.
func Page(w io.Writer, title, markdown string) error {
	var buf bytes.Buffer
	buf.WriteString(pageHeader)
	buf.WriteString(escape(title))
	buf.WriteString("</title>\n</head>\n<body>\n")

	if err := Preview(&buf, markdown); err != nil {
		return err
	}

	buf.WriteString("</body>\n</html>\n")

	_, err := w.Write(buf.Bytes())
	return err
}

var titleEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string {
	return titleEscaper.Replace(s)
}
