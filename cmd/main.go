package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/fretless/tabstash/internal/repositories"
	"github.com/fretless/tabstash/internal/services"
	"github.com/fretless/tabstash/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	timeout := time.Duration(config.Backend.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	var cache services.SessionCache
	if db, err := shared.NewDatabase(config.Database.Path); err == nil {
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		if err := shared.RunMigrations(db); err == nil {
			cache = repositories.NewSessionRepository(db)
		} else {
			logger.Warnf("session cache unavailable: %v", err)
		}
	} else {
		logger.Warnf("session cache unavailable: %v", err)
	}

	provider := services.NewAuthAPI(config.Backend.URL, config.Backend.AnonKey, httpClient, cache)
	store := services.NewStoreAPI(config.Backend.URL, config.Backend.AnonKey, httpClient, config.Backend.RequestsPerSecond, provider.AccessToken)

	runner := NewRunner(RunnerOpts{
		Config:   config,
		Provider: provider,
		Store:    store,
		Logger:   logger,
	})

	app := &cli.Command{
		Name:     "tabstash",
		Usage:    "Browse and share guitar tabs from the terminal",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
