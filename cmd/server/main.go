package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/eventlane/chatgate/internal/app"
	"github.com/eventlane/chatgate/internal/config"
	"github.com/eventlane/chatgate/internal/log"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file")
		addr       = flag.String("addr", "", "HTTP listen address (overrides config)")
		logLevel   = flag.String("log-level", "", "log level (overrides config)")
	)
	flag.Parse()

	logger := log.New("info")

	cfg, path, err := config.Load(logger, *configPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", path).Msg("load config")
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	logger = log.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init application")
	}

	logger.Info().Str("addr", cfg.Addr).Msg("starting chatgate server")
	if err := application.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
	logger.Info().Msg("server stopped")
}
