package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/fretless/tabstash/internal/shared"
)

// Setup creates the config file if missing and initializes the local
// session database with migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config: %w", err)
		}
		r.writePlain("✓ Created %s — fill in your backend url and anon key\n", configPath)
	} else {
		r.writePlain("Config already exists at %s\n", configPath)
	}

	config := r.config
	if loaded, err := shared.LoadConfig(configPath); err == nil {
		config = loaded
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.logger.Info("database initialized", "path", config.Database.Path)
	return r.writePlain("✓ Database ready at %s\n", config.Database.Path)
}
