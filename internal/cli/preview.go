package cli

import (
	"bytes"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eolymp/go-latexmd/internal/markup"
	"github.com/eolymp/go-latexmd/internal/source"
)

type previewOptions struct {
	out      string
	fragment bool
	force    bool
	html     bool
}

func newPreviewCmd() *cobra.Command {
	opts := &previewOptions{}

	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Render a converted document to HTML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := source.Stdin
			if len(args) > 0 {
				path = args[0]
			}

			return runPreview(cmd, path, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.fragment, "fragment", false, "write HTML fragment instead of a page")
	cmd.Flags().BoolVar(&opts.force, "force", false, "convert even text which does not look like markup")
	cmd.Flags().BoolVar(&opts.html, "html", false, "input is HTML, convert it to Markdown first")

	return cmd
}

func runPreview(cmd *cobra.Command, path string, opts *previewOptions) error {
	text, _, err := convertDocument(path, cmd.InOrStdin(), opts.html, converter(newNormalizer(cmd), opts.force))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if opts.fragment {
		err = markup.Preview(&buf, text)
	} else {
		err = markup.Page(&buf, filepath.Base(path), text)
	}

	if err != nil {
		return err
	}

	return writeOutput(cmd.OutOrStdout(), opts.out, buf.String())
}
