package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bookshelf-engine/internal/api"
	"github.com/pdiddy/bookshelf-engine/internal/library"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bookshelf HTTP API",
	Long: `Serve runs the HTTP API the bookshelf front end talks to: shelf CRUD,
ranked catalog search, and both recommendation paths. The server shuts
down cleanly on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8000)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := engineConfig()
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	store, err := library.NewStore(cfg.Library)
	if err != nil {
		return err
	}
	defer store.Close()

	logger := api.NewLogger(cfg.Server)
	server := api.NewServer(newCatalog(cfg), store, cfg, logger, version)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx)
}
