// Package cli provides the command-line interface of latexmd.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/eolymp/go-latexmd"
	"github.com/eolymp/go-latexmd/internal/config"
	"github.com/eolymp/go-latexmd/internal/logging"
	"github.com/eolymp/go-latexmd/internal/store"
	"github.com/eolymp/go-latexmd/internal/view"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

type configKey struct{}

// NewRootCmd creates the root command with all subcommands.
func NewRootCmd() *cobra.Command {
	var cfgFile string
	var noColor bool

	root := &cobra.Command{
		Use:   "latexmd",
		Short: "Convert LaTeX markup in text fields to Markdown",
		Long: `latexmd converts a small subset of LaTeX (math, \textbf, \textit, lists,
comments and preamble commands) into text for a Markdown renderer. Markup it
cannot interpret is kept as written.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}

			if noColor {
				color.NoColor = true
			}

			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			ctx = logging.WithLogger(ctx, logger)
			cmd.SetContext(ctx)

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./latexmd.yaml)")
	flags.Int("max-input-size", latexmd.DefaultMaxInputSize, "largest input in bytes which is converted")
	flags.Int("max-depth", latexmd.DefaultMaxDepth, "maximum nesting of groups and environments")
	flags.IntP("jobs", "j", 4, "number of concurrent workers")
	flags.String("format", config.DefaultOutput, "report format (text|json|yaml)")
	flags.String("log-level", "info", "log level (debug|info|warn|error)")
	flags.String("log-format", "text", "log format (text|json)")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")

	_ = root.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(
		newConvertCmd(),
		newCheckCmd(),
		newPreviewCmd(),
		newBatchCmd(),
		newServeCmd(),
		newWatchCmd(),
		newReplCmd(),
		newVersionCmd(),
	)

	return root
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	return nil
}

// getConfig retrieves the config from the command context.
func getConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}

	return &config.Config{
		MaxInputSize: latexmd.DefaultMaxInputSize,
		MaxDepth:     latexmd.DefaultMaxDepth,
		Jobs:         1,
		Output:       config.DefaultOutput,
	}
}

func getLogger(cmd *cobra.Command) *slog.Logger {
	return logging.FromContext(cmd.Context())
}

// newNormalizer builds a normalizer from the configuration, issues are logged.
func newNormalizer(cmd *cobra.Command) *latexmd.Normalizer {
	cfg := getConfig(cmd.Context())

	options := append(cfg.Options(), latexmd.WithReporter(latexmd.LogReporter(getLogger(cmd))))
	return latexmd.New(options...)
}

// converter returns gated conversion, or forced one which ignores the cheap
// markup check.
func converter(n *latexmd.Normalizer, force bool) store.Converter {
	if force {
		return n.Convert
	}

	return n.Check
}

func newRenderer(cmd *cobra.Command) *view.Renderer {
	return view.NewRenderer(cmd.OutOrStdout(), view.Format(getConfig(cmd.Context()).Output), false)
}
