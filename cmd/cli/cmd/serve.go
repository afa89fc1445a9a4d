package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"subscription-engine/api"
	"subscription-engine/db"
	"subscription-engine/internal/config"
	"subscription-engine/internal/logging"
)

var (
	serveAddr        string
	serveDatabaseURL string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the subscription HTTP API",
	Long: `Starts the HTTP server exposing the mobile and dashboard APIs.

Examples:
  subscription-engine serve
  subscription-engine serve --addr :9090
  subscription-engine serve --database-url postgres://localhost/subscriptions`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveDatabaseURL, "database-url", "", "postgres connection string (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveDatabaseURL != "" {
		cfg.Database.Backend = string(db.BackendPostgres)
		cfg.Database.URL = serveDatabaseURL
	}
	config.Set(cfg)

	store, err := db.Open(cmd.Context(), db.Backend(cfg.Database.Backend), cfg.Database.URL)
	if err != nil {
		return err
	}
	defer store.Close()

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewServer("0.1.0", store),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("server listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("backend", cfg.Database.Backend))
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-stop:
		logging.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}
