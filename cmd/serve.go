package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nexla-ia/gerador-frases-ia/internal/config"
	"github.com/nexla-ia/gerador-frases-ia/internal/httpapi"
	"github.com/nexla-ia/gerador-frases-ia/internal/observability"
)

func newServeCmd() *cobra.Command {
	var addr string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local HTTP facade over the pipeline",
		Long:  `Mounts the access gate and exposes the gate state, the quota status, caption generation, history and the audit log as a JSON API, plus a Prometheus scrape endpoint on /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			components, err := newComponents(ctx)
			if err != nil {
				return err
			}
			defer components.Shutdown()

			listenAddr := addr
			if listenAddr == "" {
				listenAddr = config.Get().Server.ListenAddr
			}

			server := httpapi.New(components.App, listenAddr, observability.GetLogger())
			return server.Start(ctx)
		},
	}

	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.listen_addr)")
	return serveCmd
}
