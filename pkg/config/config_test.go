package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "numbering-service", cfg.App.Name)
	assert.Equal(t, 5555, cfg.App.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Database.URI)
	assert.Equal(t, "numbering", cfg.Database.DBName)
	assert.Equal(t, 10*time.Second, cfg.Database.Timeout)
	assert.Equal(t, 10, cfg.Pagination.DefaultLimit)
	assert.Equal(t, 100, cfg.Pagination.MaxLimit)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "numbering.events", cfg.RabbitMQ.Exchange)
	assert.False(t, cfg.App.IsDevelopment())
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
app:
  env: development
  port: 9000
database:
  dbname: from_file
pagination:
  defaultlimit: 20
  maxlimit: 50
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	t.Setenv("MONGO_URI", "mongodb://mongo:27017")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.True(t, cfg.App.IsDevelopment())
	assert.Equal(t, 9000, cfg.App.Port)
	assert.Equal(t, "from_file", cfg.Database.DBName)
	assert.Equal(t, "mongodb://mongo:27017", cfg.Database.URI)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 20, cfg.Pagination.DefaultLimit)
	assert.Equal(t, 50, cfg.Pagination.MaxLimit)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Database:   DatabaseConfig{URI: "mongodb://x", DBName: "db"},
			Pagination: PaginationConfig{DefaultLimit: 10, MaxLimit: 100},
			RateLimit:  RateLimitConfig{Enabled: true, Requests: 10, Window: time.Second},
		}
	}

	cfg := valid()
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Database.URI = ""
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Pagination.MaxLimit = 5
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.RateLimit.Requests = 0
	assert.Error(t, cfg.Validate())

	cfg.RateLimit.Enabled = false
	assert.NoError(t, cfg.Validate())
}
