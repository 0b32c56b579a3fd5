package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/mrx/internal/repositories"
	"github.com/desertthunder/mrx/internal/shared"
	"github.com/urfave/cli/v3"
)

// loadOrCreateConfig reads path, writing it from the template first when it does not exist. Any failure falls back to
// the defaults.
func (r *Runner) loadOrCreateConfig(path string) *shared.Config {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		r.logger.Info("config file not found, creating from template", "path", path)
		if err := shared.CreateConfigFile(path); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			return shared.DefaultConfig()
		}
		r.logger.Info("config file created", "path", path)
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "error", err)
		return shared.DefaultConfig()
	}
	return config
}

// SetupDatabase initializes the session database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config := r.loadOrCreateConfig(cmd.String("config"))

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if cmd.Bool("reset") {
		r.logger.Warn("resetting session store, the saved session will be lost")
		if err := shared.ResetSessionStore(db); err != nil {
			return fmt.Errorf("failed to reset session store: %w", err)
		}
		r.writePlain("✓ Session store rebuilt; sign in again with 'mrx auth login'\n")
	} else {
		r.logger.Info("running database migrations")
		if err := shared.RunMigrations(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	n, err := repositories.NewSessionRepository(db).Count()
	if err != nil {
		return fmt.Errorf("failed to read session table: %w", err)
	}
	applied, err := shared.AppliedMigrations(db)
	if err != nil {
		return err
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlain("✓ Database ready at %s (%d migrations applied)\n", config.Database.Path, applied)
	if n > 0 {
		r.writePlain("A persisted session is present\n")
	}
	return nil
}

// SetupConfig writes the bundled template to --config.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")

	if _, err := os.Stat(path); err == nil {
		if !cmd.Bool("force") {
			return fmt.Errorf("%w: %s already exists, pass --force to overwrite", shared.ErrInvalidArgument, path)
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to replace config: %w", err)
		}
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("written config does not load: %w", err)
	}

	r.writePlain("✓ Config written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Point [api] base_url at your portal (now %s) or set %s\n", config.API.BaseURL, shared.APIURLEnv)
	r.writePlain("2. Run 'mrx setup database' to create the session store\n")
	r.writePlain("3. Run 'mrx auth login' to sign in\n")
	return nil
}
