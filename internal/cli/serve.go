package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/piwi3910/TrayForge/internal/api"
)

type serveOptions struct {
	addr    string
	workers int
	noCache bool
}

func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the generation pipeline over HTTP until interrupted.

Routes:
  GET  /healthz
  POST /api/v1/validate
  POST /api/v1/layout
  POST /api/v1/stl/{part}    part: box, lid, assembly or tray-<letter>
  POST /api/v1/preview`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default: server_addr from config)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "generation workers")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the mesh cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOptions) error {
	addr := opts.addr
	if addr == "" {
		addr = c.config.ServerAddr
	}
	pipeline, err := c.pipelineOptions(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer pipeline.Cache.Close()

	srv := api.New(api.Options{
		Logger:   loggerFromContext(ctx),
		Pipeline: pipeline,
		Workers:  opts.workers,
	})
	defer srv.Close()

	return srv.ListenAndServe(ctx, addr)
}
