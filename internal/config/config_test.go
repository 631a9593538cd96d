package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v, err := New("")
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, "triage.assessments", cfg.Redis.Channel)
	assert.Empty(t, cfg.Database.URL)
	assert.True(t, cfg.Database.RunMigrations)
	assert.Equal(t, 5.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
env: production
server:
  port: 9090
catalog:
  path: /etc/healthbridge/catalog.yaml
telegram:
  doctor_chat_id: 42
`), 0o600))

	v, err := New(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/etc/healthbridge/catalog.yaml", cfg.Catalog.Path)
	assert.Equal(t, int64(42), cfg.Telegram.DoctorChatID)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("HEALTHBRIDGE_SERVER_PORT", "7000")
	t.Setenv("DATABASE_URL", "postgres://user:pw@db:5432/triage?sslmode=disable")
	t.Setenv("HEALTHBRIDGE_REDIS_CHANNEL", "custom")

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "postgres://user:pw@db:5432/triage?sslmode=disable", cfg.Database.URL)
	assert.Equal(t, "custom", cfg.Redis.Channel)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("HEALTHBRIDGE_SERVER_PORT", "70000")

	v, err := New("")
	require.NoError(t, err)
	_, err = Load(v)
	assert.Error(t, err)
}

func TestNew_MissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfig_Redacted(t *testing.T) {
	cfg := Config{
		Database: DatabaseConfig{URL: "postgres://user:secret@db:5432/triage?sslmode=disable"},
		Redis:    RedisConfig{Password: "hunter2"},
		Telegram: TelegramConfig{Token: "123:abc"},
	}

	red := cfg.Redacted()
	assert.NotContains(t, red.Database.URL, "secret")
	assert.Contains(t, red.Database.URL, "user")
	assert.Equal(t, "****", red.Redis.Password)
	assert.Equal(t, "****", red.Telegram.Token)

	// The original is untouched.
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
}
