package latexmd_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/eolymp/go-latexmd"
	"github.com/google/go-cmp/cmp"
)

func TestReport_Counts(t *testing.T) {
	_, report := latexmd.Convert("\\textbf{a \\textit{b \\end{itemize} $c")

	want := map[string]int{
		"unbalanced braces":      2,
		"mismatched environment": 1,
		"unterminated math span": 1,
	}

	if diff := cmp.Diff(want, report.Counts()); diff != "" {
		t.Errorf("Counts do not match (-want +got):\n%s", diff)
	}

	if report.Empty() {
		t.Errorf("Report must not be empty")
	}
}

func TestLogReporter(t *testing.T) {
	var b bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelDebug}))
	n := latexmd.New(latexmd.WithReporter(latexmd.LogReporter(logger)))

	n.Normalize("$x$")
	if b.Len() != 0 {
		t.Fatalf("Clean conversion must not be logged, got %q", b.String())
	}

	n.Normalize("\\textbf{a")

	got := b.String()
	for _, want := range []string{"level=WARN", "issues=1", `"unbalanced braces"=1`} {
		if !strings.Contains(got, want) {
			t.Errorf("Log record %q does not contain %q", got, want)
		}
	}
}
