package store

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/eolymp/go-latexmd"
)

// Converter turns a stored value into its normalized form.
type Converter func(string) (string, latexmd.Report)

// Stats summarizes a batch run.
type Stats struct {
	RunID    string `json:"run_id" yaml:"run_id"`
	Rows     int    `json:"rows" yaml:"rows"`
	Changed  int    `json:"changed" yaml:"changed"`
	Degraded int    `json:"degraded" yaml:"degraded"`
	DryRun   bool   `json:"dry_run" yaml:"dry_run"`
}

// Batch normalizes a column of every row of a table.
type Batch struct {
	Store   *Store
	Table   Table
	Convert Converter
	Jobs    int
	DryRun  bool
	Logger  *slog.Logger
}

// Run converts all rows with up to Jobs workers and writes back rows whose
// value changed. The first failed update stops the run.
func (b *Batch) Run(ctx context.Context, runID string) (Stats, error) {
	stats := Stats{RunID: runID, DryRun: b.DryRun}

	records, err := b.Store.Records(ctx, b.Table)
	if err != nil {
		return stats, err
	}

	stats.Rows = len(records)

	var changed, degraded atomic.Int64

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(b.Jobs, 1))

	for _, record := range records {
		eg.Go(func() error {
			out, report := b.Convert(record.Text)

			if !report.Empty() {
				degraded.Add(1)
				b.logger().Warn("row degraded", "run", runID, "key", record.Key, "issues", len(report.Issues))
			}

			if out == record.Text {
				return nil
			}

			changed.Add(1)

			if b.DryRun {
				b.logger().Debug("row would change", "run", runID, "key", record.Key)
				return nil
			}

			return b.Store.Update(egctx, b.Table, record.Key, out)
		})
	}

	err = eg.Wait()

	stats.Changed = int(changed.Load())
	stats.Degraded = int(degraded.Load())

	b.logger().Info("batch finished", "run", runID, "table", b.Table.Name, "rows", stats.Rows, "changed", stats.Changed, "degraded", stats.Degraded, "dry_run", b.DryRun)

	return stats, err
}

func (b *Batch) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return b.Logger
}
