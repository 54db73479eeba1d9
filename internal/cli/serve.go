package cli

import (
	"github.com/spf13/cobra"

	"github.com/eolymp/go-latexmd/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve conversion over HTTP",
		Long: `Serve exposes POST /v1/normalize accepting {"text": "...", "force": false}
and returning {"text": "...", "issues": {...}}, and GET /healthz.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig(cmd.Context())

			srv := server.New(server.Config{
				Normalizer:   newNormalizer(cmd),
				MaxInputSize: cfg.MaxInputSize,
				Logger:       getLogger(cmd),
			})

			return srv.Serve(cmd.Context(), cfg.Serve.Addr)
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")

	return cmd
}
