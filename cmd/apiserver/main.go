// API server entry point for the discovery compliance engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/app"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/config"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (PARENCY_* environment variables when empty)")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	logger.Info("starting discovery compliance API server",
		logging.String("version", version),
		logging.String("commit", commit),
		logging.Int("port", cfg.Server.Port),
	)

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to assemble application", logging.Err(err))
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Run(context.Background()); err != nil {
		logger.Error("server exited with error", logging.Err(err))
		os.Exit(1)
	}
	logger.Info("server exited")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}
