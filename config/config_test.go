package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"f0oster/adspyview/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	config.EnvAPIBase,
	config.EnvDSN,
	config.EnvTimeout,
	config.EnvColor,
	config.EnvPageSize,
	config.EnvListen,
}

// clearEnv unsets every config variable for the test and restores them afterwards.
// godotenv only fills variables that are not set at all, so t.Setenv("") is not enough.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		prev, had := os.LookupEnv(key)
		require.NoError(t, os.Unsetenv(key))
		t.Cleanup(func() {
			if had {
				_ = os.Setenv(key, prev)
			} else {
				_ = os.Unsetenv(key)
			}
		})
	}
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadEnvConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.LoadEnvConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, config.ViewerConfiguration{
		APIBase:  "http://localhost:8080/api",
		Timeout:  15 * time.Second,
		Color:    true,
		PageSize: 50,
		Listen:   ":8080",
	}, cfg)
}

func TestLoadEnvConfig_File(t *testing.T) {
	clearEnv(t)
	path := writeEnvFile(t, `
ADSPY_API_BASE=https://adspy.example.com/api
ADSPY_DSN=postgres://viewer@db:5432/adspy
ADSPY_TIMEOUT=3s
ADSPY_COLOR=false
ADSPY_PAGE_SIZE=25
`)

	cfg, err := config.LoadEnvConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://adspy.example.com/api", cfg.APIBase)
	assert.Equal(t, "postgres://viewer@db:5432/adspy", cfg.DSN)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.False(t, cfg.Color)
	assert.Equal(t, 25, cfg.PageSize)
}

func TestLoadEnvConfig_EnvironmentWinsOverFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvPageSize, "10")
	path := writeEnvFile(t, "ADSPY_PAGE_SIZE=99\n")

	cfg, err := config.LoadEnvConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.PageSize)
}

func TestLoadEnvConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		config.EnvTimeout:  "soon",
		config.EnvColor:    "maybe",
		config.EnvPageSize: "ten",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := config.LoadEnvConfig("")
			assert.Error(t, err)
		})
	}

	t.Run("non-positive page size", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(config.EnvPageSize, "0")

		_, err := config.LoadEnvConfig("")
		assert.ErrorContains(t, err, "must be positive")
	})
}
