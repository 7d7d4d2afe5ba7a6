package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwulff/flowscribe/internal/config"
	"github.com/jwulff/flowscribe/internal/dispatch"
	"github.com/jwulff/flowscribe/internal/mcp"
	"github.com/jwulff/flowscribe/internal/store"
	"github.com/jwulff/flowscribe/internal/version"
)

func main() {
	// stdout carries the protocol stream, so all logging goes to stderr.
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}

	dispatcher := dispatch.New(store.New(cfg.DatabasePath), time.Now)
	srv := mcp.NewServer(dispatcher, log)

	log.Info().Str("version", version.Version).Str("database", cfg.DatabasePath).
		Msg("flowscribe mcp server starting")

	if err := srv.ServeStdio(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
