package cli

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/eolymp/go-latexmd/internal/store"
	"github.com/eolymp/go-latexmd/internal/view"
)

type batchOptions struct {
	table  string
	key    string
	column string
	dryRun bool
	force  bool
}

func newBatchCmd() *cobra.Command {
	opts := &batchOptions{}

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Normalize a text column of a database table",
		Long: `Batch reads every row of a table, converts the given text column and writes
back the rows which changed. The database is sqlite (a file path, optionally
prefixed with sqlite:) or postgres (postgres:// DSN).`,
		Example: `  latexmd batch --dsn problems.db --table problems --column statement
  latexmd batch --dsn postgres://localhost/app --table public.posts --key uuid --column body --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd, opts)
		},
	}

	cmd.Flags().String("dsn", "", "database DSN")
	cmd.Flags().StringVar(&opts.table, "table", "", "table name")
	cmd.Flags().StringVar(&opts.key, "key", "id", "primary key column")
	cmd.Flags().StringVar(&opts.column, "column", "", "text column to normalize")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "report changes without writing them")
	cmd.Flags().BoolVar(&opts.force, "force", false, "convert even text which does not look like markup")

	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("column")

	return cmd
}

func runBatch(cmd *cobra.Command, opts *batchOptions) error {
	cfg := getConfig(cmd.Context())
	if cfg.Batch.DSN == "" {
		return errors.New("database DSN is required, use --dsn or batch.dsn")
	}

	table := store.Table{Name: opts.table, Key: opts.key, Column: opts.column}
	if err := table.Validate(); err != nil {
		return err
	}

	db, err := store.Open(cmd.Context(), cfg.Batch.DSN)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	batch := &store.Batch{
		Store:   db,
		Table:   table,
		Convert: converter(newNormalizer(cmd), opts.force),
		Jobs:    cfg.Jobs,
		DryRun:  opts.dryRun,
		Logger:  getLogger(cmd),
	}

	stats, err := batch.Run(cmd.Context(), uuid.NewString())
	if err != nil {
		return fmt.Errorf("batch %s failed: %w", stats.RunID, err)
	}

	r := newRenderer(cmd)

	switch view.Format(cfg.Output) {
	case view.FormatJSON:
		return r.RenderJSON(stats)
	case view.FormatYAML:
		return r.RenderYAML(stats)
	}

	verb := "updated"
	if stats.DryRun {
		verb = "would update"
	}

	r.Success(fmt.Sprintf("%s: %d of %d rows %s, %d degraded", table.Name, stats.Changed, stats.Rows, verb, stats.Degraded))
	return nil
}
