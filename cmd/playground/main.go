// Package main provides the entry point for the HTTP control server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"yt-audio/cmd"
	"yt-audio/internal/config"
	"yt-audio/internal/logging"
	"yt-audio/internal/metrics"
	"yt-audio/internal/player"
	"yt-audio/internal/server"
)

func main() {
	configPath := flag.String("config", "", "Config file path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Println("[ERROR]", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging)
	fmt.Println("=== yt-audio server ===")

	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer)
	app, err := cmd.NewApp(cfg, logger, appMetrics)
	if err != nil {
		logger.Error("Failed to set up audio pipeline", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Check dependencies
	if err := app.Checker().Check(os.Stdout); err != nil {
		os.Exit(1)
	}

	// Setup context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessions := server.NewSessionManager(func(url string) player.Interface {
		return app.NewPlayer(url)
	}, logger)
	defer sessions.Close()

	api := server.NewAPI(sessions, app.Registry, logger)
	router := server.SetupRouter(api, appMetrics, prometheus.DefaultGatherer)

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP API listening", slog.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", slog.String("error", err.Error()))
			stop()
		}
	}()

	fmt.Println("[INFO] Ready! Press Ctrl+C to stop")

	// Wait for shutdown
	<-ctx.Done()
	fmt.Println("\n[INFO] Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", slog.String("error", err.Error()))
	}
}
