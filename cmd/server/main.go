package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ChuloWay/gamification-system/app"
	"github.com/ChuloWay/gamification-system/config"
	"github.com/ChuloWay/gamification-system/internal/observability"
	"github.com/ChuloWay/gamification-system/internal/observability/attr"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	obs := observability.Init(cfg)
	logger := obs.Logger
	logger.Info("Starting gamification server")

	application, err := app.New(ctx, cfg, obs)
	if err != nil {
		logger.Error("Failed to initialize application", attr.Error(err))
		os.Exit(1)
	}

	if err := application.Start(ctx); err != nil {
		logger.Error("Failed to start application", attr.Error(err))
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		_ = application.Stop(shutdownCtx)
		shutdownCancel()
		os.Exit(1)
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-application.Errors():
		logger.Error("Server failed", attr.Error(err))
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := application.Stop(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", attr.Error(err))
	}

	logger.Info("Gamification server stopped")
}
