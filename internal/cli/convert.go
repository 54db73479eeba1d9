package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/eolymp/go-latexmd"
	"github.com/eolymp/go-latexmd/internal/markup"
	"github.com/eolymp/go-latexmd/internal/source"
	"github.com/eolymp/go-latexmd/internal/store"
)

type convertOptions struct {
	out    string
	outDir string
	force  bool
	html   bool
}

func newConvertCmd() *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert [files...]",
		Short: "Convert documents to Markdown",
		Long: `Convert reads documents (stdin when no file or "-" is given) and writes
the converted text. Several documents are converted concurrently into --out-dir.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&opts.outDir, "out-dir", "", "output directory for multiple inputs")
	cmd.Flags().BoolVar(&opts.force, "force", false, "convert even text which does not look like markup")
	cmd.Flags().BoolVar(&opts.html, "html", false, "input is HTML, convert it to Markdown first")

	return cmd
}

func runConvert(cmd *cobra.Command, args []string, opts *convertOptions) error {
	if len(args) == 0 {
		args = []string{source.Stdin}
	}

	if len(args) > 1 && opts.outDir == "" {
		return errors.New("--out-dir is required for multiple inputs")
	}

	if opts.out != "" && opts.outDir != "" {
		return errors.New("--out and --out-dir cannot be used together")
	}

	convert := converter(newNormalizer(cmd), opts.force)

	if opts.outDir == "" {
		text, _, err := convertDocument(args[0], cmd.InOrStdin(), opts.html, convert)
		if err != nil {
			return err
		}

		return writeOutput(cmd.OutOrStdout(), opts.out, text)
	}

	targets, err := outputTargets(opts.outDir, args)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.outDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	cfg := getConfig(cmd.Context())
	logger := getLogger(cmd).With("run", uuid.NewString())

	eg, ctx := errgroup.WithContext(cmd.Context())
	eg.SetLimit(cfg.Jobs)

	for i, path := range args {
		target := targets[i]

		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			text, _, err := convertDocument(path, cmd.InOrStdin(), opts.html, convert)
			if err != nil {
				return err
			}

			if err := writeOutput(nil, target, text); err != nil {
				return err
			}

			logger.Debug("converted", "file", path, "out", target)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}

	logger.Info("conversion finished", "files", len(args), "out_dir", opts.outDir)
	return nil
}

// convertDocument reads and converts a single input.
func convertDocument(path string, stdin io.Reader, html bool, convert store.Converter) (string, latexmd.Report, error) {
	doc, err := source.Open(path, stdin)
	if err != nil {
		return "", latexmd.Report{}, err
	}

	return convertText(doc.Text, html, convert)
}

func convertText(text string, html bool, convert store.Converter) (string, latexmd.Report, error) {
	if html {
		md, err := markup.FromHTML(text)
		if err != nil {
			return "", latexmd.Report{}, fmt.Errorf("failed to convert HTML: %w", err)
		}

		text = md
	}

	out, report := convert(text)
	return out, report, nil
}

// writeOutput writes text followed by a line break to the file, or to w when
// the path is empty.
func writeOutput(w io.Writer, path, text string) error {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	if path == "" {
		_, err := io.WriteString(w, text)
		return err
	}

	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// outputTargets returns an output file per input and fails if two inputs would
// be written to the same file.
func outputTargets(dir string, inputs []string) ([]string, error) {
	targets := make([]string, len(inputs))
	seen := make(map[string]string, len(inputs))

	for i, path := range inputs {
		target := filepath.Join(dir, outputName(path))
		if other, ok := seen[target]; ok {
			return nil, fmt.Errorf("%s and %s would both be written to %s", other, path, target)
		}

		seen[target] = path
		targets[i] = target
	}

	return targets, nil
}

// outputName replaces the extension of an input file with .md
func outputName(path string) string {
	if path == source.Stdin {
		return "stdin.md"
	}

	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".md"
}
