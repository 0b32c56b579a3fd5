package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/mrx/internal/repositories"
	"github.com/desertthunder/mrx/internal/session"
	"github.com/desertthunder/mrx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}
	if err := config.Validate(); err != nil {
		logger.Fatalf("configuration error: %v", err)
	}
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Log.Level))

	// The session survives restarts when the database opens; otherwise it lasts for this process only.
	var storage session.Storage = session.NewMemoryStorage()
	if db, err := shared.OpenSessionDatabase(config.Database); err == nil {
		defer db.Close()
		storage = repositories.NewSessionRepository(db)
	} else {
		logger.Warn("session database unavailable, session will not persist", "error", err,
			"hint", "mrx setup database --reset")
	}

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Storage: storage,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "mrx",
		Usage:    "Terminal client for the music-rights portal",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
