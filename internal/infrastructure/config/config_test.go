package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "Pantry", cfg.App.Name)
	assert.Equal(t, []string{"home"}, cfg.Pantry.Locations)
	assert.Equal(t, "pantry", cfg.Pantry.StorageKey)
	assert.Equal(t, "sqlite", cfg.Pantry.Backend)
	assert.Equal(t, 5*1024*1024, cfg.Pantry.QuotaBytes)
	assert.Equal(t, 45*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "mock", cfg.AI.Provider)
	assert.Equal(t, 512, cfg.AI.CacheSize)
	assert.Equal(t, 24*time.Hour, cfg.AI.CacheTTL)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	// Arrange
	path := writeConfig(t, `
app:
  environment: staging
pantry:
  locations: [home, office, cabin]
  backend: memory
  quota_bytes: 1024
server:
  port: 9090
  read_timeout: 5s
`)
	t.Setenv("PANTRY_SERVER_PORT", "9191")
	t.Setenv("PANTRY_APP_LOG_LEVEL", "debug")

	// Act
	cfg, err := Load(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"home", "office", "cabin"}, cfg.Pantry.Locations)
	assert.Equal(t, "memory", cfg.Pantry.Backend)
	assert.Equal(t, 1024, cfg.Pantry.QuotaBytes)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"duplicate locations", "pantry:\n  locations: [home, home]\n"},
		{"empty locations", "pantry:\n  locations: []\n"},
		{"padded location", "pantry:\n  locations: [\" home\"]\n"},
		{"unknown backend", "pantry:\n  backend: floppy\n"},
		{"gemini without key", "ai:\n  provider: gemini\n"},
		{"bad log level", "app:\n  log_level: loud\n"},
		{"bad port", "server:\n  port: 70000\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))

			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Error(t, err)
}

func TestConfig_Addresses(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Host: "db", Port: 5432, Username: "u", Password: "p", Database: "pantry", SSLMode: "disable"},
		Redis:    RedisConfig{Host: "cache", Port: 6379},
	}

	assert.Equal(t, "host=db port=5432 user=u password=p dbname=pantry sslmode=disable", cfg.GetDSN())
	assert.Equal(t, "cache:6379", cfg.RedisAddr())
}
