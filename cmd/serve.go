package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tayloree/shopcli/internal/api"
	"github.com/tayloree/shopcli/internal/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve category browsing over HTTP",
	Long: "Start an HTTP service exposing the category tree, category listings and facets\n" +
		"as JSON. The catalog is reloaded on the configured refresh schedule; a failed\n" +
		"reload keeps serving the previous catalog.",
	Example: `  shopcli serve
  shopcli serve --addr 127.0.0.1:9090
  shopcli serve --catalog ./catalog.json`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	cfg := s.cfg.Server
	if flagAddr != "" {
		cfg.Addr = flagAddr
	}

	loader := func(ctx context.Context) (*api.Snapshot, error) {
		snap, _, err := s.loadCatalog(ctx)
		return snap, err
	}
	srv := server.New(cfg, loader, s.log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
