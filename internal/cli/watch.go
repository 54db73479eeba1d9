package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/eolymp/go-latexmd/internal/store"
)

const watchDebounce = 100 * time.Millisecond

type watchOptions struct {
	out   string
	force bool
	html  bool
}

func newWatchCmd() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Convert a document every time it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.out == "" {
				return errors.New("--out is required")
			}

			w := &watcher{
				path:    args[0],
				out:     opts.out,
				html:    opts.html,
				convert: converter(newNormalizer(cmd), opts.force),
				logger:  getLogger(cmd),
			}

			return w.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file")
	cmd.Flags().BoolVar(&opts.force, "force", false, "convert even text which does not look like markup")
	cmd.Flags().BoolVar(&opts.html, "html", false, "input is HTML, convert it to Markdown first")

	return cmd
}

type watcher struct {
	path    string
	out     string
	html    bool
	convert store.Converter
	logger  *slog.Logger
}

func (w *watcher) convertOnce() error {
	text, report, err := convertDocument(w.path, nil, w.html, w.convert)
	if err != nil {
		return err
	}

	if err := writeOutput(nil, w.out, text); err != nil {
		return err
	}

	w.logger.Info("converted", "file", w.path, "out", w.out, "issues", len(report.Issues))
	return nil
}

// run converts the file and keeps converting it on change until the context
// is cancelled. The directory is watched since editors often replace files
// instead of writing them.
func (w *watcher) run(ctx context.Context) error {
	if err := w.convertOnce(); err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = fw.Close() }()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}

	target := filepath.Clean(w.path)

	// conversions run on this goroutine only, so none is left behind on return
	var debounce <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != target || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			debounce = time.After(watchDebounce)

		case <-debounce:
			debounce = nil

			if err := w.convertOnce(); err != nil {
				w.logger.Error("conversion failed", "file", w.path, "error", err)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}

			w.logger.Error("watcher error", "error", err)
		}
	}
}
