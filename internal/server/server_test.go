package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eolymp/go-latexmd"
	"github.com/eolymp/go-latexmd/internal/testutil"
)

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(New(Config{Logger: testutil.NewTestLogger(t)}).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   NormalizeResponse
	}{
		{
			name:   "convert",
			body:   `{"text":"\\textbf{a\\textit{b}c}"}`,
			status: http.StatusOK,
			want:   NormalizeResponse{Text: "**a*b*c**"},
		},
		{
			name:   "plain text untouched",
			body:   `{"text":"  50% off "}`,
			status: http.StatusOK,
			want:   NormalizeResponse{Text: "  50% off "},
		},
		{
			name:   "force",
			body:   `{"text":"abc % note\ndef","force":true}`,
			status: http.StatusOK,
			want:   NormalizeResponse{Text: "abc\ndef"},
		},
		{
			name:   "issues",
			body:   `{"text":"\\textbf{a"}`,
			status: http.StatusOK,
			want:   NormalizeResponse{Text: "\\textbf{a", Issues: map[string]int{"unbalanced braces": 1}},
		},
	}

	handler := New(Config{Logger: testutil.NewTestLogger(t)}).Handler()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/normalize", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code)

			var got NormalizeResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_BadRequest(t *testing.T) {
	handler := New(Config{}).Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/normalize", strings.NewReader(`{"text":`))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNormalize_TooLarge(t *testing.T) {
	handler := New(Config{Normalizer: latexmd.New(latexmd.WithMaxInputSize(8)), MaxInputSize: 8}).Handler()

	body := `{"text":"` + strings.Repeat("a", 128<<10) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/normalize", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestNormalize_MethodNotAllowed(t *testing.T) {
	handler := New(Config{}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/normalize", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
