package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `{
		"port": 8080,
		"database_url": "postgres://localhost/applyagent",
		"rate_limit_ms": 2000,
		"max_retries": 3
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "postgres://localhost/applyagent", cfg.DatabaseURL)
	assert.Equal(t, 2000, cfg.RateLimitMs)
	assert.Equal(t, 3, cfg.MaxRetries)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := writeConfigFile(t, "{not json")
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{Port: 8080, RateLimitMs: 1000, MaxRetries: 2}
	assert.NoError(t, valid.Validate())

	badPort := Config{Port: 70000}
	assert.Error(t, badPort.Validate())

	badRate := Config{RateLimitMs: -1}
	assert.Error(t, badRate.Validate())

	missingProfile := Config{Profile: filepath.Join(t.TempDir(), "nope.json")}
	assert.Error(t, missingProfile.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Port: 9000}
	defaults := Config{
		Port:        8080,
		DatabaseURL: "postgres://localhost/applyagent",
		APIKey:      "key-from-file",
		MaxRetries:  3,
	}

	merged := cfg.MergeWithDefaults(defaults)

	assert.Equal(t, 9000, merged.Port, "explicit value wins")
	assert.Equal(t, "postgres://localhost/applyagent", merged.DatabaseURL)
	assert.Equal(t, "key-from-file", merged.APIKey)
	assert.Equal(t, 3, merged.MaxRetries)
}

func TestNewJWTConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_EXPIRATION_HOURS", "48")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, "test-secret", cfg.Secret)
	assert.Equal(t, 48, cfg.ExpirationHours)
}

func TestNewJWTConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_EXPIRATION_HOURS", "")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.ExpirationHours)
}

func TestNewJWTConfig_Errors(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := NewJWTConfig()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_EXPIRATION_HOURS", "zero")
	_, err = NewJWTConfig()
	assert.Error(t, err)

	t.Setenv("JWT_EXPIRATION_HOURS", "0")
	_, err = NewJWTConfig()
	assert.Error(t, err)
}
