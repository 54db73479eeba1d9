package latexmd_test

import (
	"math/rand"
	"strings"
	"sync"
	"testing"
	"testing/quick"
	"time"

	"github.com/eolymp/go-latexmd"
)

func TestNormalize(t *testing.T) {
	tt := []struct {
		name   string
		input  string
		output string
	}{
		{
			name:   "nested styling",
			input:  "\\textbf{a\\textit{b}c}",
			output: "**a*b*c**",
		},
		{
			name:   "unbalanced braces",
			input:  "see \\textbf{a",
			output: "see \\textbf{a",
		},
		{
			name:   "enumerate",
			input:  "\\begin{enumerate}\\item[i] one\\item two\\end{enumerate}",
			output: "i. one\n2. two",
		},
		{
			name:   "styled label",
			input:  "\\begin{enumerate}\\item[\\textbf{a}] one\\end{enumerate}",
			output: "**a**. one",
		},
		{
			name:   "itemize",
			input:  "List:\n\\begin{itemize}\n\\item $a$\n\\item \\textbf{b}\n\\end{itemize}\nDone.",
			output: "List:\n- $a$\n- **b**\n\nDone.",
		},
		{
			name:   "math",
			input:  "Find $x$ if $$x^2 = \\frac{1}{4}$$",
			output: "Find $x$ if $$x^2 = \\frac{1}{4}$$",
		},
		{
			name:   "equation",
			input:  "Solve:\n\\begin{equation}\n  a + b = c\n\\end{equation}",
			output: "Solve:\n$$a + b = c$$",
		},
		{
			name:   "bracket math",
			input:  "\\textbf{Note} \\(a\\) and \\[b\\]",
			output: "**Note** $a$ and $$b$$",
		},
		{
			name:   "document",
			input:  "\\documentclass{article}\n\\usepackage[utf8]{inputenc}\n\\begin{document}\n\\textit{Hello}\n\n\n\nworld\n\\end{document}\n",
			output: "*Hello*\n\nworld",
		},
		{
			name:   "comment",
			input:  "\\textbf{abc} % note\ndef",
			output: "**abc**\ndef",
		},
		{
			name:   "plain prose unchanged",
			input:  "  plain prose with a \\ backslash and 100% sure\n",
			output: "  plain prose with a \\ backslash and 100% sure\n",
		},
		{
			name:   "unknown command kept",
			input:  "$x$ \\frac{1}{2}",
			output: "$x$ \\frac{1}{2}",
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if got := latexmd.Normalize(tc.input); got != tc.output {
				t.Errorf("Normalized text does not match:\n want %q\n  got %q", tc.output, got)
			}
		})
	}
}

func TestConvert_Comments(t *testing.T) {
	tt := []struct {
		name   string
		input  string
		output string
	}{
		{name: "comment", input: "abc % note\ndef", output: "abc\ndef"},
		{name: "escaped percent", input: "abc \\% note\ndef", output: "abc % note\ndef"},
		{name: "comment at the end", input: "abc % note", output: "abc"},
		{name: "comment only line", input: "a\n% note\nb", output: "a\n\nb"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got, report := latexmd.Convert(tc.input)
			if got != tc.output {
				t.Errorf("Converted text does not match:\n want %q\n  got %q", tc.output, got)
			}

			if !report.Empty() {
				t.Errorf("Unexpected issues: %v", report.Issues)
			}
		})
	}
}

func TestNeedsConversion(t *testing.T) {
	tt := map[string]bool{
		"plain text":        false,
		"a \\ b":            false,
		"\\alpha":           false,
		"\\(x\\)":           false,
		"costs $5":          true,
		"\\textbf{x}":       true,
		"\\begin{document}": true,
		"\\frac{1}{2}":      true,
	}

	for input, want := range tt {
		if got := latexmd.NeedsConversion(input); got != want {
			t.Errorf("NeedsConversion(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNormalizer_MaxInputSize(t *testing.T) {
	var reports []latexmd.Report

	n := latexmd.New(
		latexmd.WithMaxInputSize(8),
		latexmd.WithReporter(latexmd.ReporterFunc(func(r latexmd.Report) { reports = append(reports, r) })),
	)

	input := "\\textbf{too long}"

	if got := n.Normalize(input); got != input {
		t.Errorf("Large input must be returned unchanged, got %q", got)
	}

	if len(reports) != 1 || reports[0].Count(latexmd.ErrInputTooLarge) != 1 {
		t.Errorf("Expected one report with input too large, got %v", reports)
	}

	if got := n.Normalize("$x$"); got != "$x$" {
		t.Errorf("Small input must be converted, got %q", got)
	}
}

func TestNormalizer_Reporter(t *testing.T) {
	var got latexmd.Report
	calls := 0

	n := latexmd.New(latexmd.WithReporter(latexmd.ReporterFunc(func(r latexmd.Report) {
		calls++
		got = r
	})))

	out := n.Normalize("\\textbf{a $b \\begin{equation}x\\end{align}")

	if calls != 1 {
		t.Fatalf("Reporter must be called once, called %d times", calls)
	}

	if !strings.Contains(out, "\\textbf{a") {
		t.Errorf("Degraded markup must be kept, got %q", out)
	}

	if got.Count(latexmd.ErrUnbalancedBraces) != 1 {
		t.Errorf("Expected unbalanced braces issue, got %v", got.Issues)
	}

	if got.Count(latexmd.ErrUnterminatedMath) != 1 {
		t.Errorf("Expected unterminated math issue, got %v", got.Issues)
	}

	n.Normalize("plain")

	if calls != 1 {
		t.Errorf("Reporter must not be called for text which is not converted")
	}
}

func TestNormalizer_Concurrent(t *testing.T) {
	n := latexmd.New()

	input := "\\begin{enumerate}\\item \\textbf{a \\textit{b}}\\item $c$\\end{enumerate}"
	want := "1. **a *b***\n2. $c$"

	var wg sync.WaitGroup
	errs := make(chan string, 32)

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := n.Normalize(input); got != want {
				errs <- got
			}
		}()
	}

	wg.Wait()
	close(errs)

	for got := range errs {
		t.Errorf("Concurrent conversion does not match: want %q, got %q", want, got)
	}
}

// fragments are glued together to produce arbitrary, often broken, documents
var fragments = []string{
	"plain ",
	"line\n",
	"\n\n\n",
	"\\textbf{a}",
	"\\textit{b \\textbf{c}}",
	"\\emph{d}",
	"$x^2$",
	"$$\\sum_i i$$",
	"\\[y\\]",
	"\\(z\\)",
	"% note\n",
	"\\begin{enumerate}\\item one\\item[b] two\\end{enumerate}",
	"\\begin{itemize}\\item x\\end{itemize}",
	"\\begin{enumerate}\\item[\\textbf{a}] one\\end{enumerate}",
	"\\begin{equation}e=mc^2\\end{equation}",
	"\\begin{center}",
	"\\end{center}",
	"\\textbf{unbalanced ",
	"{",
	"}",
	"\\unknown",
	"\\documentclass{article}",
}

func document(picks []uint8) string {
	var b strings.Builder
	for _, p := range picks {
		b.WriteString(fragments[int(p)%len(fragments)])
	}

	return b.String()
}

func quickConfig() *quick.Config {
	return &quick.Config{MaxCount: 500, Rand: rand.New(rand.NewSource(42))}
}

func TestNormalize_LinearTime(t *testing.T) {
	if testing.Short() {
		t.Skip("slow")
	}

	tt := []struct {
		name    string
		prefix  string
		pattern string
	}{
		{name: "unterminated options", prefix: "$x$ ", pattern: "\\usepackage["},
		{name: "unterminated labels", prefix: "\\begin{itemize}", pattern: "\\item["},
		{name: "short escapes", prefix: "$x$ ", pattern: "\\,"},
		{name: "escaped percent", prefix: "$x$ ", pattern: "\\%"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			n := (latexmd.DefaultMaxInputSize - len(tc.prefix)) / len(tc.pattern)
			input := tc.prefix + strings.Repeat(tc.pattern, n)

			started := time.Now()
			out, report := latexmd.Convert(input)
			elapsed := time.Since(started)

			if report.Count(latexmd.ErrInputTooLarge) != 0 {
				t.Fatalf("Input must fit the default size limit")
			}

			if out == "" {
				t.Errorf("Expected converted text, got nothing")
			}

			if elapsed > 5*time.Second {
				t.Errorf("Conversion of %d bytes took %v", len(input), elapsed)
			}
		})
	}
}

// A converted \% becomes a literal percent sign, which reads as a comment when
// the output is converted once again.
func TestNormalize_EscapedPercentTwice(t *testing.T) {
	once := latexmd.Normalize("$x$ costs 50\\% today")
	if once != "$x$ costs 50% today" {
		t.Fatalf("First pass does not match: got %q", once)
	}

	if twice := latexmd.Normalize(once); twice != "$x$ costs 50" {
		t.Errorf("Second pass does not match: got %q", twice)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	check := func(picks []uint8) bool {
		once := latexmd.Normalize(document(picks))
		twice := latexmd.Normalize(once)

		if once != twice {
			t.Logf("input %q\n once %q\ntwice %q", document(picks), once, twice)
		}

		return once == twice
	}

	if err := quick.Check(check, quickConfig()); err != nil {
		t.Error(err)
	}
}

var mathPieces = []string{"x", "^2", "_{i}", "\\alpha", " + ", "\\{", "}", "{", "\\frac{1}{2}", "%", "\\textbf{b}", "\\\\"}

func TestNormalize_MathVerbatim(t *testing.T) {
	check := func(picks []uint8, display bool) bool {
		var b strings.Builder
		b.WriteString("a")
		for _, p := range picks {
			b.WriteString(mathPieces[int(p)%len(mathPieces)])
		}
		b.WriteString("b")

		delimiter := "$"
		if display {
			delimiter = "$$"
		}

		span := delimiter + b.String() + delimiter
		out := latexmd.Normalize("text " + span + " \\textbf{more}")

		if !strings.Contains(out, span) {
			t.Logf("math %q is not preserved in %q", span, out)
			return false
		}

		return true
	}

	if err := quick.Check(check, quickConfig()); err != nil {
		t.Error(err)
	}
}
