package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"purchase-tracking/internal/config"
	"purchase-tracking/internal/database"
	"purchase-tracking/internal/delivery"
	"purchase-tracking/internal/parser"
	"purchase-tracking/internal/server"
)

func main() {
	configFile := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.LoadServerConfig(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("database initialized", "path", cfg.DBPath)

	shippingConfig, err := delivery.LoadShippingConfig(cfg.ShippingConfigPath)
	if err != nil {
		logger.Error("failed to load shipping config", "path", cfg.ShippingConfigPath, "error", err)
		os.Exit(1)
	}
	if shippingConfig == nil {
		shippingConfig = delivery.DefaultShippingConfig()
	}

	deliveryExtractor, err := delivery.NewExtractor(shippingConfig)
	if err != nil {
		logger.Error("failed to build delivery extractor", "error", err)
		os.Exit(1)
	}

	emailParser := parser.NewEmailParser(parser.NewPatternTable(), deliveryExtractor, logger)

	srv := &http.Server{
		Addr:    cfg.Address(),
		Handler: server.NewRouter(db, emailParser, logger),

		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Address())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
			os.Exit(1)
		}
	}
}

func newLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
