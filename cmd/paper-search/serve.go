// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-search/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interactive search page",
	Long: `Serve starts the HTTP server. Each open browser tab gets a search session:
journals load on first selection, keyword and year input is debounced, and
results stream back to the page as they change. Loaded journals are shared by
all sessions for the life of the process.

The server stops gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	c, err := newComponents(reg)
	if err != nil {
		return err
	}

	srv := server.New(cfg.Server, cfg.UI, server.Deps{
		Store:    c.store,
		Loader:   c.loader,
		Cache:    c.cache,
		Metrics:  c.metrics,
		Gatherer: reg,
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8080)")

	rootCmd.AddCommand(serveCmd)
}
