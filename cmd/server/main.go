package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"subscription-engine/api"
	"subscription-engine/db"
	"subscription-engine/internal/config"
	"subscription-engine/internal/logging"

	"go.uber.org/zap"
)

var version = "dev"

func main() {
	addr := flag.String("addr", "", "listen address (overrides config)")
	cfgPath := flag.String("config", "", "path to config file")
	databaseURL := flag.String("database-url", "", "postgres connection string (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logging.Fatal("failed to load configuration", zap.Error(err))
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *databaseURL != "" {
		cfg.Database.Backend = string(db.BackendPostgres)
		cfg.Database.URL = *databaseURL
	}
	config.Set(cfg)

	if err := logging.Initialize(cfg.Logging); err != nil {
		logging.Fatal("failed to initialize logging", zap.Error(err))
	}
	defer logging.Sync()

	store, err := db.Open(context.Background(), db.Backend(cfg.Database.Backend), cfg.Database.URL)
	if err != nil {
		logging.Fatal("failed to open store", zap.Error(err))
	}
	defer store.Close()

	server := api.NewServer(version, store)
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logging.Info("server listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("backend", cfg.Database.Backend),
			zap.String("version", version))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logging.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logging.Error("graceful shutdown failed", zap.Error(err))
		os.Exit(1)
	}
}
