package config

import (
	"github.com/ilyakaznacheev/cleanenv"
)

// loadFromEnv overrides config from TODO_* environment variables.
// Only variables that are set are applied; unset ones keep the value
// from defaults or config files.
func loadFromEnv(cfg *Config) error {
	return cleanenv.UpdateEnv(cfg)
}

// EnvHelp returns a description of the environment variables Config reads.
func EnvHelp() (string, error) {
	return cleanenv.GetDescription(&Config{}, nil)
}
