package latexmd

import (
	"errors"
	"log/slog"
)

// Recoverable problems found in the markup. None of them is returned to the caller
// of Normalize, the offending span is kept as written instead.
var (
	ErrUnbalancedBraces      = errors.New("unbalanced braces")
	ErrUnterminatedMath      = errors.New("unterminated math span")
	ErrMismatchedEnvironment = errors.New("mismatched environment")
	ErrNestingTooDeep        = errors.New("nesting depth exceeded")
	ErrInputTooLarge         = errors.New("input too large")
)

// IssueKinds lists all recoverable errors in a stable order.
var IssueKinds = []error{
	ErrUnbalancedBraces,
	ErrUnterminatedMath,
	ErrMismatchedEnvironment,
	ErrNestingTooDeep,
	ErrInputTooLarge,
}

// Issue is a problem found at a byte offset of the input.
type Issue struct {
	Err    error
	Offset int
}

// Report collects issues of one invocation.
type Report struct {
	Issues []Issue
}

func (r *Report) add(err error, offset int) {
	r.Issues = append(r.Issues, Issue{Err: err, Offset: offset})
}

func (r Report) Empty() bool {
	return len(r.Issues) == 0
}

// Count returns number of issues of a given kind
func (r Report) Count(kind error) (n int) {
	for _, issue := range r.Issues {
		if errors.Is(issue.Err, kind) {
			n++
		}
	}

	return
}

// Counts returns number of issues per kind, kinds without issues are omitted.
func (r Report) Counts() map[string]int {
	counts := map[string]int{}
	for _, kind := range IssueKinds {
		if n := r.Count(kind); n > 0 {
			counts[kind.Error()] = n
		}
	}

	return counts
}

// Reporter receives the report of every invocation which ran the conversion.
// It only observes, the converted text does not depend on it.
type Reporter interface {
	Report(Report)
}

type ReporterFunc func(Report)

func (f ReporterFunc) Report(r Report) {
	f(r)
}

// LogReporter logs non-empty reports as warnings.
func LogReporter(logger *slog.Logger) Reporter {
	return ReporterFunc(func(r Report) {
		if r.Empty() {
			return
		}

		attrs := []any{slog.Int("issues", len(r.Issues))}
		for _, kind := range IssueKinds {
			if n := r.Count(kind); n > 0 {
				attrs = append(attrs, slog.Int(kind.Error(), n))
			}
		}

		logger.Warn("markup degraded to passthrough", attrs...)
	})
}
