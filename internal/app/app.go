// Package app wires configuration, logging, storage and the two stores
// into one handle shared by the CLI commands and the terminal UI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/config"
	"github.com/nibzard/todo-go/internal/kv"
	"github.com/nibzard/todo-go/internal/logging"
	"github.com/nibzard/todo-go/internal/persist"
	"github.com/nibzard/todo-go/internal/theme"
	"github.com/nibzard/todo-go/internal/todo"
)

// Options controls how an App is assembled.
type Options struct {
	// LogOutput receives console logs. nil means stderr.
	LogOutput io.Writer
	// RunLog sends logs to a per-run file under the configured log dir
	// instead of LogOutput. The TUI uses this since it owns the terminal.
	RunLog bool
	// Storage overrides the configured backend.
	Storage kv.Storage
}

// App holds the running pieces.
type App struct {
	Config  *config.Config
	Logger  *log.Logger
	Storage kv.Storage
	Writer  *persist.Writer
	Tasks   *todo.Store
	Theme   *theme.Store
	RunLog  *logging.RunLogger
}

// Open builds an App from cfg. Both stores begin hydrating immediately.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	a := &App{Config: cfg}

	logOpts := logging.OptionsFromConfig(cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)
	out := opts.LogOutput
	if opts.RunLog {
		runLog, err := logging.NewRunLogger(cfg.LogDir, Scope(cfg))
		if err != nil {
			return nil, fmt.Errorf("opening run log: %w", err)
		}
		a.RunLog = runLog
		out = runLog.Writer()
		// Run logs are read later, so they always carry timestamps.
		logOpts.ReportTimestamp = true
	}
	a.Logger = logging.New(out, logOpts)

	storage := opts.Storage
	if storage == nil {
		var err error
		storage, err = kv.Open(ctx, StorageConfig(cfg))
		if err != nil {
			_ = a.RunLog.Close()
			return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Backend, err)
		}
	}
	a.Storage = storage
	a.Logger.Debug("storage opened", "backend", cfg.Storage.Backend)

	a.Writer = persist.NewWriter(storage, persist.Options{
		MaxInFlight: cfg.MaxInFlightWrites,
		Timeout:     cfg.WriteTimeout,
		Logger:      a.Logger,
	})

	tasks, err := todo.NewStore(ctx, storage, todo.Options{
		Key:            cfg.Storage.TasksKey,
		Writer:         a.Writer,
		Logger:         a.Logger,
		ValidateSchema: cfg.ValidateSchema,
	})
	if err != nil {
		a.closeStorage()
		return nil, err
	}
	a.Tasks = tasks

	themes, err := theme.NewStore(ctx, storage, theme.Options{
		Key:    cfg.Storage.ThemeKey,
		Writer: a.Writer,
		Logger: a.Logger,
	})
	if err != nil {
		a.closeStorage()
		return nil, err
	}
	a.Theme = themes
	return a, nil
}

// StorageConfig maps the configuration onto kv settings.
func StorageConfig(cfg *config.Config) kv.Config {
	return kv.Config{
		Backend:       cfg.Storage.Backend,
		Dir:           cfg.DataDir,
		SQLitePath:    cfg.Storage.SQLitePath,
		RedisAddr:     cfg.Storage.RedisAddr,
		RedisURL:      cfg.Storage.RedisURL,
		RedisPassword: cfg.Storage.RedisPassword,
		RedisDB:       cfg.Storage.RedisDB,
		RedisPrefix:   cfg.Storage.RedisPrefix,
		PostgresDSN:   cfg.Storage.PostgresDSN,
	}
}

// Scope names the storage an App talks to. Run logs are grouped by it.
func Scope(cfg *config.Config) string {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		return cfg.Storage.SQLitePath
	case config.BackendRedis:
		if cfg.Storage.RedisURL != "" {
			return "redis-" + cfg.Storage.RedisURL
		}
		return "redis-" + cfg.Storage.RedisAddr
	case config.BackendPostgres:
		return "postgres"
	case config.BackendMemory:
		return "memory"
	default:
		return cfg.DataDir
	}
}

// WaitReady blocks until both stores have hydrated or ctx is done.
func (a *App) WaitReady(ctx context.Context) error {
	if err := a.Tasks.WaitReady(ctx); err != nil {
		return err
	}
	return a.Theme.WaitReady(ctx)
}

// Loading reports whether either store is still hydrating.
func (a *App) Loading() bool {
	return a.Tasks.Loading() || a.Theme.Loading()
}

// Close gives pending writes until ctx is done to land, then releases the
// storage and the run log. Writes still in flight after that are lost.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.Writer.WaitContext(ctx); err != nil {
		a.Logger.Warn("pending writes abandoned", "in_flight", a.Writer.Stats().InFlight, "err", err)
		errs = append(errs, fmt.Errorf("waiting for writes: %w", err))
	} else {
		a.Writer.Close()
	}
	if err := a.Storage.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing storage: %w", err))
	}
	if err := a.RunLog.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing run log: %w", err))
	}
	return errors.Join(errs...)
}

func (a *App) closeStorage() {
	_ = a.Storage.Close()
	_ = a.RunLog.Close()
}
