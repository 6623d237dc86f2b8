package config

import (
	"flag"
)

// parseFlags defines and parses global CLI flags.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	if fs == nil {
		fs = flag.NewFlagSet("todo", flag.ContinueOnError)
	}

	// Paths
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory for file and sqlite storage")
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Log directory")

	// Storage
	fs.StringVar(&cfg.Storage.Backend, "storage", cfg.Storage.Backend, "Storage backend (file|memory|sqlite|redis|postgres)")
	fs.StringVar(&cfg.Storage.TasksKey, "tasks-key", cfg.Storage.TasksKey, "Storage key for the task list")
	fs.StringVar(&cfg.Storage.ThemeKey, "theme-key", cfg.Storage.ThemeKey, "Storage key for the theme preference")
	fs.StringVar(&cfg.Storage.SQLitePath, "sqlite", cfg.Storage.SQLitePath, "SQLite database path")
	fs.StringVar(&cfg.Storage.RedisAddr, "redis-addr", cfg.Storage.RedisAddr, "Redis address (host:port)")
	fs.StringVar(&cfg.Storage.RedisURL, "redis-url", cfg.Storage.RedisURL, "Redis URL (redis://...)")
	fs.StringVar(&cfg.Storage.RedisPrefix, "redis-prefix", cfg.Storage.RedisPrefix, "Prefix for redis keys")
	fs.StringVar(&cfg.Storage.PostgresDSN, "pg-dsn", cfg.Storage.PostgresDSN, "PostgreSQL connection string")
	ephemeral := fs.Bool("ephemeral", false, "Keep tasks and theme in memory only (same as -storage memory)")

	// Persistence
	fs.DurationVar(&cfg.WriteTimeout, "write-timeout", cfg.WriteTimeout, "Timeout for each background storage write")
	fs.IntVar(&cfg.MaxInFlightWrites, "max-inflight-writes", cfg.MaxInFlightWrites, "Maximum concurrent storage writes (0 = unbounded)")
	fs.BoolVar(&cfg.ValidateSchema, "validate-schema", cfg.ValidateSchema, "Validate stored tasks against the JSON schema on load")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text|json|logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Include timestamps in log output")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Include caller location in log output")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ephemeral {
		cfg.Storage.Backend = BackendMemory
	}
	return nil
}
