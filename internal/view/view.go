// Package view provides output formatting for latexmd commands.
package view

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// Format represents an output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Status of a checked document.
const (
	StatusUnchanged = "unchanged"
	StatusConverted = "converted"
	StatusDegraded  = "degraded"
	StatusFailed    = "failed"
)

// Result describes conversion of one document.
type Result struct {
	Name     string         `json:"name" yaml:"name"`
	Encoding string         `json:"encoding,omitempty" yaml:"encoding,omitempty"`
	Status   string         `json:"status" yaml:"status"`
	Issues   map[string]int `json:"issues,omitempty" yaml:"issues,omitempty"`
	Error    string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// Renderer renders data in a specific format.
type Renderer struct {
	format Format
	writer io.Writer
}

// NewRenderer creates a new renderer with the specified format.
func NewRenderer(w io.Writer, format Format, noColor bool) *Renderer {
	if noColor {
		color.NoColor = true
	}

	return &Renderer{format: format, writer: w}
}

// RenderResults renders a list of results, as a table for text format.
func (r *Renderer) RenderResults(results []Result) error {
	switch r.format {
	case FormatJSON:
		return r.RenderJSON(results)
	case FormatYAML:
		return r.RenderYAML(results)
	}

	if len(results) == 0 {
		_, _ = fmt.Fprintln(r.writer, "(0 documents)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.writer)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Document", "Encoding", "Status", "Issues"})

	for _, res := range results {
		t.AppendRow(table.Row{res.Name, res.Encoding, paint(res.Status), formatIssues(res)})
	}

	t.Render()
	return nil
}

// RenderJSON renders an object as JSON.
func (r *Renderer) RenderJSON(v any) error {
	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// RenderYAML renders an object as YAML.
func (r *Renderer) RenderYAML(v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}

	_, err = r.writer.Write(data)
	return err
}

// RenderText renders plain text.
func (r *Renderer) RenderText(text string) {
	_, _ = fmt.Fprintln(r.writer, text)
}

// Success prints a success message.
func (r *Renderer) Success(msg string) {
	_, _ = color.New(color.FgGreen).Fprintln(r.writer, "✓ "+msg)
}

// Error prints an error message.
func (r *Renderer) Error(msg string) {
	_, _ = color.New(color.FgRed).Fprintln(r.writer, "✗ "+msg)
}

func paint(status string) string {
	switch status {
	case StatusConverted:
		return color.GreenString(status)
	case StatusDegraded:
		return color.YellowString(status)
	case StatusFailed:
		return color.RedString(status)
	default:
		return status
	}
}

func formatIssues(res Result) string {
	if res.Error != "" {
		return res.Error
	}

	keys := make([]string, 0, len(res.Issues))
	for k := range res.Issues {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %d", k, res.Issues[k]))
	}

	return strings.Join(parts, ", ")
}
