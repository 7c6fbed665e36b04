package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/AI2HU/dbconsole/internal/cache"
	"github.com/AI2HU/dbconsole/internal/config"
	"github.com/AI2HU/dbconsole/internal/db"
	"github.com/AI2HU/dbconsole/internal/logger"
)

// App owns the long-lived connections shared by every command of one
// process. It is built once in main and passed to the dispatcher.
type App struct {
	Config *config.Config
	DB     *sqlx.DB
	Cache  cache.Cache
	Out    io.Writer

	helper *db.Helper
}

// New returns an App with no configuration loaded yet.
func New() *App {
	return &App{Out: os.Stdout}
}

// LoadConfig reads the env file at envPath. A missing default env file is
// not an error: the process environment alone is used instead.
func (a *App) LoadConfig(envPath string, required bool) error {
	var env config.Env

	switch {
	case config.Exists(envPath):
		loaded, err := config.LoadEnv(envPath)
		if err != nil {
			return err
		}
		env = loaded
	case required:
		return fmt.Errorf("env file %s not found. Run 'dbconsole init' to create one", envPath)
	default:
		logger.Debug("Env file %s not found, using process environment", envPath)
		env = config.ProcessEnv()
	}

	cfg, err := config.FromEnv(env)
	if err != nil {
		return err
	}
	a.Config = cfg
	return nil
}

// Connect opens the relational and cache connections from a.Config.
func (a *App) Connect(ctx context.Context) error {
	if a.Config == nil {
		return errors.New("configuration not loaded")
	}

	conn, err := db.Open(ctx, a.Config.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	c, err := cache.Open(ctx, a.Config.Cache)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to connect to cache: %w", err)
	}

	a.DB = conn
	a.Cache = c
	a.helper = nil
	return nil
}

// Helper returns the data-access helper, building it on first use.
func (a *App) Helper() *db.Helper {
	if a.helper == nil && a.DB != nil {
		a.helper = db.New(a.DB)
	}
	return a.helper
}

// Close releases both connections.
func (a *App) Close() error {
	var errs []error

	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close cache: %w", err))
		}
		a.Cache = nil
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
		a.DB = nil
	}
	a.helper = nil

	return errors.Join(errs...)
}
