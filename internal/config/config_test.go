package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "propertyflow", cfg.Database.DBName)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 24, cfg.JWT.ExpiryHours)
	assert.Equal(t, "propertyflow-uploads", cfg.Storage.Bucket)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
env: production
server:
  port: 9090
database:
  host: db.internal
  dbname: propflow_prod
jwt:
  secret: file-secret
  expiry_hours: 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.True(t, IsProduction(cfg))
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "propflow_prod", cfg.Database.DBName)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, 8, cfg.JWT.ExpiryHours)

	// 未覆盖的字段回落到默认值
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "7070")
	t.Setenv("APP_JWT_SECRET", "env-secret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
}

func TestIsProduction(t *testing.T) {
	assert.False(t, IsProduction(nil))
	assert.False(t, IsProduction(&Config{Env: "development"}))
	assert.True(t, IsProduction(&Config{Env: "production"}))
}
