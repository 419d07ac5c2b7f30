package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/fairguide/internal/server"
	"github.com/jonathan/fairguide/internal/server/ratelimit"
)

var (
	serveAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start an HTTP server that lists the exhibitors and serves their compiled pages and the complete guide.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	addr := a.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv, err := server.New(server.Config{
		Addr:      addr,
		RateLimit: ratelimit.CompileConfig(a.cfg.Server.PDFRequestsPerMinute),
	}, a.service, a.log.With("component", "server"))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := commandContext()
	defer stop()
	return srv.Start(ctx)
}
