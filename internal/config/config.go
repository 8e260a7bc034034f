// Package config provides application configuration management.
// Configuration is loaded from environment variables, optionally seeded from a
// .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// EnvFileVar names the variable that selects the .env file to seed from.
const EnvFileVar = "TASKTRACKER_ENV_FILE"

// Config holds all application configuration.
type Config struct {
	// User data file, relative to the working directory unless absolute.
	DataPath string `env:"TASKTRACKER_DATA_PATH" envDefault:"data/user_data.json"`

	// Logging. Logs go to stderr; the interactive transcript owns stdout.
	LogLevel  string `env:"TASKTRACKER_LOG_LEVEL" envDefault:"warn"`
	LogFormat string `env:"TASKTRACKER_LOG_FORMAT" envDefault:"text"`
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DataPath) == "" {
		errs = append(errs, errors.New("TASKTRACKER_DATA_PATH must not be empty"))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid TASKTRACKER_LOG_FORMAT %q (expected text|json)", c.LogFormat))
	}
	return errors.Join(errs...)
}

// Load seeds the process environment from the .env file (if present) and
// parses it into a Config. Variables already set are not overridden.
func Load() (*Config, error) {
	envFile := os.Getenv(EnvFileVar)
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadEnvironment parses config from an explicit variable set instead of the
// process environment.
func LoadEnvironment(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
