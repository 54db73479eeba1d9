package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/eolymp/go-latexmd/internal/source"
	"github.com/eolymp/go-latexmd/internal/store"
	"github.com/eolymp/go-latexmd/internal/view"
)

type checkOptions struct {
	strict bool
	force  bool
	html   bool
}

func newCheckCmd() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Report markup which cannot be converted",
		Long: `Check converts documents without writing them and reports, per document,
whether it changes and which constructs were kept as written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail if any document is degraded or cannot be read")
	cmd.Flags().BoolVar(&opts.force, "force", false, "convert even text which does not look like markup")
	cmd.Flags().BoolVar(&opts.html, "html", false, "input is HTML, convert it to Markdown first")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *checkOptions) error {
	if len(args) == 0 {
		args = []string{source.Stdin}
	}

	convert := converter(newNormalizer(cmd), opts.force)
	results := make([]view.Result, len(args))

	eg, ctx := errgroup.WithContext(cmd.Context())
	eg.SetLimit(getConfig(cmd.Context()).Jobs)

	for i, path := range args {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			results[i] = checkDocument(path, cmd, opts, convert)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}

	if err := newRenderer(cmd).RenderResults(results); err != nil {
		return err
	}

	if !opts.strict {
		return nil
	}

	failed := 0
	for _, res := range results {
		if res.Status == view.StatusDegraded || res.Status == view.StatusFailed {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents have issues", failed, len(results))
	}

	return nil
}

func checkDocument(path string, cmd *cobra.Command, opts *checkOptions, convert store.Converter) view.Result {
	res := view.Result{Name: path}

	doc, err := source.Open(path, cmd.InOrStdin())
	if err != nil {
		res.Status = view.StatusFailed
		res.Error = err.Error()
		return res
	}

	res.Encoding = doc.Encoding

	out, report, err := convertText(doc.Text, opts.html, convert)
	if err != nil {
		res.Status = view.StatusFailed
		res.Error = err.Error()
		return res
	}

	switch {
	case !report.Empty():
		res.Status = view.StatusDegraded
		res.Issues = report.Counts()
	case out != doc.Text:
		res.Status = view.StatusConverted
	default:
		res.Status = view.StatusUnchanged
	}

	return res
}
