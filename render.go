package latexmd

import (
	"io"
	"regexp"
	"strconv"
	"strings"
)

var blankLines = regexp.MustCompile(`\n{3,}`)

func Render(w io.Writer, nodes []*Node) error {
	_, err := io.WriteString(w, String(nodes))
	return err
}

// String renders nodes without the final whitespace clean up, see Tidy.
func String(nodes []*Node) string {
	var b strings.Builder
	renderChildren(&b, nodes)

	return b.String()
}

// Tidy unifies line endings, squeezes runs of empty lines to one and trims the text.
func Tidy(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}

func render(b *strings.Builder, node *Node) {
	switch node.Kind {
	case TextNode, PassthroughNode:
		b.WriteString(node.Data)
	case StyledNode:
		renderStyled(b, node)
	case MathNode:
		renderMath(b, node)
	case ListNode:
		renderList(b, node)
	case ItemNode:
		renderChildren(b, node.Children)
	case CommentNode:
	}
}

func renderChildren(b *strings.Builder, nodes []*Node) {
	for _, node := range nodes {
		render(b, node)
	}
}

func renderChildrenAndWrap(b *strings.Builder, nodes []*Node, prefix, suffix string) {
	b.WriteString(prefix)
	renderChildren(b, nodes)
	b.WriteString(suffix)
}

func renderStyled(b *strings.Builder, node *Node) {
	switch node.Style {
	case Bold:
		renderChildrenAndWrap(b, node.Children, "**", "**")
	case Italic:
		renderChildrenAndWrap(b, node.Children, "*", "*")
	default:
		renderChildren(b, node.Children)
	}
}

func renderMath(b *strings.Builder, node *Node) {
	if node.Style == DisplayMath {
		b.WriteString("$$" + strings.TrimSpace(node.Data) + "$$")
		return
	}

	b.WriteString("$" + node.Data + "$")
}

// renderList puts every item on its own line. Item content is not indented, so
// math inside items stays byte for byte.
func renderList(b *strings.Builder, node *Node) {
	if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
		b.WriteByte('\n')
	}

	for index, item := range node.Children {
		b.WriteString(marker(node.Style, item, index+1))
		b.WriteString(strings.TrimSpace(String(item.Children)))
		b.WriteByte('\n')
	}
}

// marker returns item prefix: explicit label if given, otherwise position in the
// list for enumerate and a dash for itemize.
func marker(style Style, item *Node, ordinal int) string {
	_, ok := item.Parameters["label"]
	label := String(item.Label)

	if style == Itemize {
		if !ok {
			label = "-"
		}

		return label + " "
	}

	if !ok {
		label = strconv.Itoa(ordinal)
	}

	return label + ". "
}
