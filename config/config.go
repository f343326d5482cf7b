package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
)

// Environment variables read by LoadEnvConfig.
const (
	EnvAPIBase  = "ADSPY_API_BASE"
	EnvDSN      = "ADSPY_DSN"
	EnvTimeout  = "ADSPY_TIMEOUT"
	EnvColor    = "ADSPY_COLOR"
	EnvPageSize = "ADSPY_PAGE_SIZE"
	EnvListen   = "ADSPY_LISTEN"
)

type ViewerConfiguration struct {
	APIBase  string        `default:"http://localhost:8080/api"`
	DSN      string        // read from the database directly when set
	Timeout  time.Duration `default:"15s"`
	Color    bool          `default:"true"`
	PageSize int           `default:"50"`
	Listen   string        `default:":8080"`
}

// LoadEnvConfig loads configName into the environment if it exists and
// builds the configuration from defaults overridden by environment variables.
// Variables already set in the environment win over the file.
func LoadEnvConfig(configName string) (ViewerConfiguration, error) {
	var cfg ViewerConfiguration

	if configName != "" {
		if err := godotenv.Load(configName); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("error loading %s: %w", configName, err)
		}
	}

	if err := defaults.Set(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to apply defaults: %w", err)
	}

	if v, ok := os.LookupEnv(EnvAPIBase); ok && v != "" {
		cfg.APIBase = v
	}
	if v, ok := os.LookupEnv(EnvDSN); ok {
		cfg.DSN = v
	}
	if v, ok := os.LookupEnv(EnvListen); ok && v != "" {
		cfg.Listen = v
	}

	if v, ok := os.LookupEnv(EnvTimeout); ok && v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", EnvTimeout, err)
		}
		cfg.Timeout = timeout
	}

	if v, ok := os.LookupEnv(EnvColor); ok && v != "" {
		color, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", EnvColor, err)
		}
		cfg.Color = color
	}

	if v, ok := os.LookupEnv(EnvPageSize); ok && v != "" {
		pageSize, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse integer: %w", err)
		}
		if pageSize <= 0 {
			return cfg, fmt.Errorf("%s must be positive, got %d", EnvPageSize, pageSize)
		}
		cfg.PageSize = pageSize
	}

	return cfg, nil
}
