// Package latexmd converts a small subset of LaTeX (math, \textbf, \textit,
// enumerate and itemize lists, comments and preamble commands) into text for a
// Markdown-like renderer: **bold**, *italic*, numbered lines and math kept
// verbatim between $ or $$.
//
// Conversion never fails. Markup which cannot be interpreted, such as unbalanced
// braces or an unknown command, is kept as written.
package latexmd

import (
	"regexp"
	"strings"
)

const (
	DefaultMaxInputSize = 1 << 20
	DefaultMaxDepth     = 64
)

// command followed by an argument, eg. \textbf{
var trigger = regexp.MustCompile(`\\[a-zA-Z]+\{`)

type settings struct {
	maxInputSize int
	maxDepth     int
	rules        Rules
	reporter     Reporter
}

type Option func(*settings)

// WithMaxInputSize sets the largest input (in bytes) which is converted, larger
// inputs are returned unchanged.
func WithMaxInputSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxInputSize = n
		}
	}
}

// WithMaxDepth limits nesting of groups, commands and environments.
func WithMaxDepth(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

func WithRules(rules Rules) Option {
	return func(s *settings) {
		s.rules = rules
	}
}

func WithReporter(r Reporter) Option {
	return func(s *settings) {
		s.reporter = r
	}
}

func configure(options []Option) settings {
	s := settings{
		maxInputSize: DefaultMaxInputSize,
		maxDepth:     DefaultMaxDepth,
		rules:        DefaultRules(),
	}

	for _, option := range options {
		option(&s)
	}

	return s
}

// Normalizer converts text fields. It is safe for concurrent use.
type Normalizer struct {
	settings
}

func New(options ...Option) *Normalizer {
	return &Normalizer{settings: configure(options)}
}

var std = New()

// Normalize converts text with default settings, see Normalizer.Normalize.
func Normalize(text string) string {
	return std.Normalize(text)
}

// Check runs gated conversion with default settings, see Normalizer.Check.
func Check(text string) (string, Report) {
	return std.Check(text)
}

// Convert runs conversion with default settings, see Normalizer.Convert.
func Convert(text string) (string, Report) {
	return std.Convert(text)
}

// NeedsConversion is a cheap check whether text may contain markup: a $ sign or a
// command with an argument. Text without either is left alone, so prose with a
// stray backslash is never touched. Alternative math delimiters \( and \[ alone
// do not trigger conversion.
func NeedsConversion(text string) bool {
	return strings.Contains(text, "$") || trigger.MatchString(text)
}

// Normalize returns text ready for rendering. Text which does not look like markup
// or is larger than the limit is returned unchanged.
func (n *Normalizer) Normalize(text string) string {
	out, _ := n.Check(text)
	return out
}

// Check is Normalize returning the issues as well. The report is empty when the
// text is not converted.
func (n *Normalizer) Check(text string) (string, Report) {
	if len(text) <= n.maxInputSize && !NeedsConversion(text) {
		return text, Report{}
	}

	return n.Convert(text)
}

// Convert runs the conversion regardless of NeedsConversion and returns the
// issues found on the way.
func (n *Normalizer) Convert(text string) (string, Report) {
	var report Report

	if len(text) > n.maxInputSize {
		report.add(ErrInputTooLarge, n.maxInputSize)
		n.notify(report)

		return text, report
	}

	p := NewParser(text, WithRules(n.rules), WithMaxDepth(n.maxDepth))
	out := Tidy(String(p.Parse()))

	report = p.Report()
	n.notify(report)

	return out, report
}

func (n *Normalizer) notify(r Report) {
	if n.reporter != nil {
		n.reporter.Report(r)
	}
}
