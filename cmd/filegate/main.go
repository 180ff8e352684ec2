package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/filegate/internal/logger"
	"github.com/marmos91/filegate/internal/session"
	"github.com/marmos91/filegate/internal/webui"
	"github.com/marmos91/filegate/pkg/config"
	"github.com/marmos91/filegate/pkg/registry"
)

func main() {
	configPath := flag.String("config", "", "Path to the configuration file (default: XDG config dir)")
	logLevel := flag.String("log-level", "", "Override the configured log level (trace, debug, info, warn, error)")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	cfg, created, err := config.LoadOrCreate(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	log := logger.New(cfg.Logging)

	if created {
		log.Info().Str("path", path).Msg("created default configuration file")
	}
	log.Info().Str("path", path).Msg("configuration loaded")

	reg, err := registry.Build(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build mount registry")
	}
	log.Info().Int("mounts", reg.CountMounts()).Msg("mount registry ready")

	var sessions *session.Store
	if cfg.Sessions.Path == "" {
		sessions, err = session.OpenInMemory()
	} else {
		sessions, err = session.Open(cfg.Sessions.Path)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open session store")
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close session store")
		}
	}()

	srv, err := webui.New(cfg, reg, sessions, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build web server")
	}

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info().Str("addr", srv.Addr()).Msg("server is running, press Ctrl+C to stop")

	select {
	case <-sigChan:
		log.Info().Msg("shutdown signal received, stopping server")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
			os.Exit(1)
		}
		if err := <-serverDone; err != nil {
			log.Error().Err(err).Msg("server exited with error")
			os.Exit(1)
		}
		log.Info().Msg("server stopped gracefully")

	case err := <-serverDone:
		if err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
		log.Info().Msg("server stopped")
	}
}
