package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// resolvePaths expands and anchors every path in cfg. The data and log
// directories and the sqlite file end up absolute so that the log scope
// for a store does not depend on the directory todo was started from. An
// unset sqlite path lives in the data directory.
func resolvePaths(cfg *Config) error {
	var err error
	if cfg.DataDir, err = absPath(cfg.DataDir); err != nil {
		return fmt.Errorf("resolving data dir: %w", err)
	}
	if cfg.LogDir, err = absPath(cfg.LogDir); err != nil {
		return fmt.Errorf("resolving log dir: %w", err)
	}

	if cfg.Storage.SQLitePath == "" {
		if cfg.DataDir != "" {
			cfg.Storage.SQLitePath = filepath.Join(cfg.DataDir, DefaultSQLiteFile)
		}
		return nil
	}
	if cfg.Storage.SQLitePath, err = absPath(cfg.Storage.SQLitePath); err != nil {
		return fmt.Errorf("resolving sqlite path: %w", err)
	}
	return nil
}

// absPath expands p and makes it absolute. Empty stays empty.
func absPath(p string) (string, error) {
	p = expandPath(p)
	if p == "" || filepath.IsAbs(p) {
		return p, nil
	}
	return filepath.Abs(p)
}

// expandPath expands $VAR references and a leading ~ in p.
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~`+string(filepath.Separator)) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}
