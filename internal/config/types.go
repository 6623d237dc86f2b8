package config

import (
	"fmt"
	"time"
)

// Storage backends understood by the kv layer.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Default values.
const (
	DefaultDataDir      = "~/.todo/data"
	DefaultLogDir       = "~/.todo/logs"
	DefaultBackend      = BackendFile
	DefaultTasksKey     = "@todo_tasks"
	DefaultThemeKey     = "@todo_theme"
	DefaultSQLiteFile   = "todo.db"
	DefaultWriteTimeout = 5 * time.Second
)

// Config holds the full configuration for todo.
type Config struct {
	// Paths
	DataDir string `toml:"data_dir" env:"TODO_DATA_DIR"`
	LogDir  string `toml:"log_dir" env:"TODO_LOG_DIR"`

	// Durable storage
	Storage StorageConfig `toml:"storage"`

	// Persistence writer
	WriteTimeout      time.Duration `toml:"write_timeout" env:"TODO_WRITE_TIMEOUT"`
	MaxInFlightWrites int           `toml:"max_inflight_writes" env:"TODO_MAX_INFLIGHT_WRITES"`

	// Validate stored task records against the embedded JSON Schema on load.
	ValidateSchema bool `toml:"validate_schema" env:"TODO_VALIDATE_SCHEMA"`

	// Logging configuration
	LogLevel      string `toml:"log_level" env:"TODO_LOG_LEVEL"`
	LogFormat     string `toml:"log_format" env:"TODO_LOG_FORMAT"`
	LogTimestamps bool   `toml:"log_timestamps" env:"TODO_LOG_TIMESTAMPS"`
	LogCaller     bool   `toml:"log_caller" env:"TODO_LOG_CALLER"`

	// Computed
	ConfigFiles []string `toml:"-"`
}

// StorageConfig selects and configures the durable key-value backend.
type StorageConfig struct {
	Backend  string `toml:"backend" env:"TODO_STORAGE"`
	TasksKey string `toml:"tasks_key" env:"TODO_TASKS_KEY"`
	ThemeKey string `toml:"theme_key" env:"TODO_THEME_KEY"`

	SQLitePath string `toml:"sqlite_path" env:"TODO_SQLITE_PATH"`

	RedisAddr     string `toml:"redis_addr" env:"TODO_REDIS_ADDR"`
	RedisURL      string `toml:"redis_url" env:"TODO_REDIS_URL"`
	RedisPassword string `toml:"redis_password" env:"TODO_REDIS_PASSWORD"`
	RedisDB       int    `toml:"redis_db" env:"TODO_REDIS_DB"`
	RedisPrefix   string `toml:"redis_prefix" env:"TODO_REDIS_PREFIX"`

	PostgresDSN string `toml:"postgres_dsn" env:"TODO_PG_DSN"`
}

// Backends returns the names of the supported storage backends.
func Backends() []string {
	return []string{BackendFile, BackendMemory, BackendSQLite, BackendRedis, BackendPostgres}
}

// Validate checks that the selected backend has the settings it needs.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile:
		if c.DataDir == "" {
			return fmt.Errorf("storage backend %q requires data_dir", c.Storage.Backend)
		}
	case BackendMemory:
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage backend %q requires sqlite_path", c.Storage.Backend)
		}
	case BackendRedis:
		if c.Storage.RedisAddr == "" && c.Storage.RedisURL == "" {
			return fmt.Errorf("storage backend %q requires redis_addr or redis_url", c.Storage.Backend)
		}
	case BackendPostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage backend %q requires postgres_dsn", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("unknown storage backend %q (want one of %v)", c.Storage.Backend, Backends())
	}
	if c.Storage.TasksKey == "" || c.Storage.ThemeKey == "" {
		return fmt.Errorf("storage keys must not be empty")
	}
	if c.Storage.TasksKey == c.Storage.ThemeKey {
		return fmt.Errorf("tasks_key and theme_key must differ (both %q)", c.Storage.TasksKey)
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("write_timeout must not be negative")
	}
	if c.MaxInFlightWrites < 0 {
		return fmt.Errorf("max_inflight_writes must not be negative")
	}
	return nil
}
