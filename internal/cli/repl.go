package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/eolymp/go-latexmd"
)

const replPrompt = "latexmd> "

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Convert text interactively, line by line",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rl, err := readline.NewEx(&readline.Config{
				Prompt:          replPrompt,
				InterruptPrompt: "^C",
				EOFPrompt:       ".quit",
				Stdout:          cmd.OutOrStdout(),
				Stderr:          cmd.ErrOrStderr(),
			})
			if err != nil {
				return fmt.Errorf("failed to initialize REPL: %w", err)
			}
			defer func() { _ = rl.Close() }()

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")

			return repl(rl, cmd.OutOrStdout(), newNormalizer(cmd))
		},
	}
}

// lineReader is the part of readline used by the loop
type lineReader interface {
	Readline() (string, error)
}

// repl converts every line it reads. Lines ending with a backslash are joined
// with the next one, so multi-line environments can be typed.
func repl(in lineReader, out io.Writer, n *latexmd.Normalizer) error {
	var buf strings.Builder

	for {
		line, err := in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			continue
		}

		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		if buf.Len() == 0 {
			switch strings.TrimSpace(line) {
			case "":
				continue
			case ".quit", ".exit":
				return nil
			case ".help":
				_, _ = fmt.Fprintln(out, "Enter LaTeX text to convert it. End a line with \\ to continue on the next line.")
				_, _ = fmt.Fprintln(out, ".quit  exit")
				continue
			}
		}

		if strings.HasSuffix(line, "\\") && !strings.HasSuffix(line, "\\\\") {
			buf.WriteString(strings.TrimSuffix(line, "\\"))
			buf.WriteByte('\n')
			continue
		}

		buf.WriteString(line)

		text, report := n.Convert(buf.String())
		buf.Reset()

		_, _ = fmt.Fprintln(out, text)

		for _, issue := range report.Issues {
			_, _ = fmt.Fprintf(out, "  ! %v at %d\n", issue.Err, issue.Offset)
		}
	}
}
