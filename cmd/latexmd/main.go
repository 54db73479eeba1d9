// Command latexmd converts LaTeX markup in text fields to Markdown.
package main

import (
	"os"

	"github.com/eolymp/go-latexmd/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
