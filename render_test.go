package latexmd_test

import (
	"bytes"
	"testing"

	"github.com/eolymp/go-latexmd"
)

func TestRender(t *testing.T) {
	tt := []struct {
		name   string
		input  []*latexmd.Node
		output string
	}{
		{
			name:   "styles",
			input:  []*latexmd.Node{text("a "), bold(text("b "), italic(text("c"))), text(" d")},
			output: "a **b *c*** d",
		},
		{
			name:   "inline math kept as is",
			input:  []*latexmd.Node{math(latexmd.InlineMath, " x^2 ")},
			output: "$ x^2 $",
		},
		{
			name:   "display math trimmed",
			input:  []*latexmd.Node{math(latexmd.DisplayMath, "\n x^2 \n")},
			output: "$$x^2$$",
		},
		{
			name:   "comment dropped",
			input:  []*latexmd.Node{text("a"), comment(" note"), text("\nb")},
			output: "a\nb",
		},
		{
			name:   "passthrough",
			input:  []*latexmd.Node{pass("\\frac"), pass("{"), text("1"), pass("}")},
			output: "\\frac{1}",
		},
		{
			name: "enumerate",
			input: []*latexmd.Node{
				list(latexmd.Enumerate, labeled("i", text(" one ")), item(text("two"))),
			},
			output: "i. one\n2. two\n",
		},
		{
			name: "itemize after text",
			input: []*latexmd.Node{
				text("intro"),
				list(latexmd.Itemize, item(text(" a")), labeled("*", text(" b"))),
			},
			output: "intro\n- a\n* b\n",
		},
		{
			name: "list item keeps math",
			input: []*latexmd.Node{
				list(latexmd.Enumerate, item(math(latexmd.InlineMath, "a \\le b"))),
			},
			output: "1. $a \\le b$\n",
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			var b bytes.Buffer

			if err := latexmd.Render(&b, tc.input); err != nil {
				t.Fatalf("Render failed: %v", err)
			}

			if got := b.String(); got != tc.output {
				t.Errorf("Rendered text does not match:\n want %q\n  got %q", tc.output, got)
			}
		})
	}
}

func TestTidy(t *testing.T) {
	tt := []struct {
		name   string
		input  string
		output string
	}{
		{name: "trim", input: "  \n a \n ", output: "a"},
		{name: "line endings", input: "a\r\nb\rc", output: "a\nb\nc"},
		{name: "empty lines", input: "a\n\n\n\n\nb", output: "a\n\nb"},
		{name: "single empty line kept", input: "a\n\nb", output: "a\n\nb"},
		{name: "crlf empty lines", input: "a\r\n\r\n\r\nb", output: "a\n\nb"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if got := latexmd.Tidy(tc.input); got != tc.output {
				t.Errorf("Tidy text does not match:\n want %q\n  got %q", tc.output, got)
			}
		})
	}
}
