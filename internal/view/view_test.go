package view

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var results = []Result{
	{Name: "a.tex", Encoding: "UTF-8", Status: StatusConverted},
	{Name: "b.tex", Encoding: "UTF-8", Status: StatusDegraded, Issues: map[string]int{"unbalanced braces": 2, "mismatched environment": 1}},
	{Name: "c.tex", Status: StatusFailed, Error: "no such file"},
}

func TestRenderResults_Text(t *testing.T) {
	var buf bytes.Buffer

	r := NewRenderer(&buf, FormatText, true)
	require.NoError(t, r.RenderResults(results))

	out := buf.String()
	assert.Contains(t, out, "Document")
	assert.Contains(t, out, "a.tex")
	assert.Contains(t, out, "mismatched environment: 1, unbalanced braces: 2")
	assert.Contains(t, out, "no such file")
}

func TestRenderResults_Empty(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewRenderer(&buf, FormatText, true).RenderResults(nil))
	assert.Equal(t, "(0 documents)\n", buf.String())
}

func TestRenderResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatJSON, true).RenderResults(results))

	var got []Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, results, got)
}

func TestRenderResults_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatYAML, true).RenderResults(results))

	var got []Result
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, results, got)
}

func TestSuccessAndError(t *testing.T) {
	var buf bytes.Buffer

	r := NewRenderer(&buf, FormatText, true)
	r.Success("done")
	r.Error("failed")

	assert.Equal(t, "✓ done\n✗ failed\n", buf.String())
}
