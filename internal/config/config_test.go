package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  host: "127.0.0.1"
  port: 9090

storage:
  driver: "redis"
  redis_url: "redis://localhost:6379/0"

notify:
  queue_url: "https://sqs.us-east-1.amazonaws.com/123/opens"

home:
  stealth: true
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Storage.RedisURL)
	assert.Equal(t, "https://sqs.us-east-1.amazonaws.com/123/opens", cfg.Notify.QueueURL)
	assert.True(t, cfg.Home.Stealth)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.False(t, cfg.Home.Stealth)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("DATABASE_URL", "postgres://localhost/tracking")
	t.Setenv("STEALTH_HOME", "true")

	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	// DATABASE_URL implies the postgres driver when none was picked explicitly
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "postgres://localhost/tracking", cfg.Storage.DatabaseURL)
	assert.True(t, cfg.Home.Stealth)
}

func TestLoadFromEnvBadPortIgnored(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Server.Port)
}
