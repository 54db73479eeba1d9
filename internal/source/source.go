// Package source reads input documents and decodes them to UTF-8.
package source

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding names reported by Decode.
const (
	UTF8    = "UTF-8"
	UTF8BOM = "UTF-8-BOM"
	UTF16LE = "UTF-16LE"
	UTF16BE = "UTF-16BE"
	GBK     = "GBK"
)

// Stdin is the name used for standard input.
const Stdin = "-"

// Document is a decoded input.
type Document struct {
	Name     string
	Text     string
	Encoding string
}

// Decode converts data to UTF-8. A byte order mark selects UTF-8 or UTF-16 and
// is removed, data without a mark which is not valid UTF-8 is read as GBK.
func Decode(data []byte) (string, string, error) {
	encoding := detect(data)

	switch encoding {
	case UTF8:
		return string(data), encoding, nil
	case GBK:
		out, _, err := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), data)
		if err != nil {
			return "", encoding, fmt.Errorf("failed to decode %s: %w", encoding, err)
		}

		return string(out), encoding, nil
	default:
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
		if err != nil {
			return "", encoding, fmt.Errorf("failed to decode %s: %w", encoding, err)
		}

		return string(out), encoding, nil
	}
}

func detect(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return UTF8BOM
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return UTF16LE
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return UTF16BE
	case utf8.Valid(data):
		return UTF8
	default:
		return GBK
	}
}

// Read decodes everything from r.
func Read(name string, r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	text, encoding, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return &Document{Name: name, Text: text, Encoding: encoding}, nil
}

// Open reads a file, "-" means stdin.
func Open(path string, stdin io.Reader) (*Document, error) {
	if path == Stdin {
		return Read(path, stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Read(path, f)
}
