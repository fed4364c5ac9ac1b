// AngelaMos | 2026
// config_test.go

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadForImportDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://prepvault@localhost/prepvault")

	c, err := LoadForImport("")
	require.NoError(t, err)

	assert.Equal(t, 50, c.Import.BatchSize)
	assert.Equal(t, int64(5<<20), c.Import.MaxPayloadBytes)
	assert.Equal(t, 30*time.Minute, c.Session.CacheTTL)
	assert.Equal(t, "/pricing", c.App.UpgradeURL)
	assert.True(t, c.Database.AutoMigrate)
}

func TestLoadForImportRequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := LoadForImport("")
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  upgrade_url: https://prepvault.dev/pricing
import:
  batch_size: 10
`), 0o600))

	t.Setenv("DATABASE_URL", "postgres://prepvault@localhost/prepvault")
	t.Setenv("IMPORT_BATCH_SIZE", "25")

	c, err := LoadForImport(path)
	require.NoError(t, err)

	assert.Equal(t, "https://prepvault.dev/pricing", c.App.UpgradeURL)
	assert.Equal(t, 25, c.Import.BatchSize)
}

func validConfig() *Config {
	return &Config{
		Database: DatabaseConfig{URL: "postgres://localhost/prepvault"},
		Redis:    RedisConfig{URL: "redis://localhost:6379"},
		JWT:      JWTConfig{PrivateKeyPath: "keys/private.pem"},
		Server: ServerConfig{
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
		Session: SessionConfig{CacheTTL: time.Minute},
		Import:  ImportConfig{BatchSize: 50},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "missing redis",
			mutate:  func(c *Config) { c.Redis.URL = "" },
			wantErr: "REDIS_URL",
		},
		{
			name: "wildcard origin with credentials",
			mutate: func(c *Config) {
				c.CORS.AllowCredentials = true
				c.CORS.AllowedOrigins = []string{"*"}
			},
			wantErr: "CORS wildcard",
		},
		{
			name: "insecure telemetry in production",
			mutate: func(c *Config) {
				c.App.Environment = "production"
				c.Otel.Enabled = true
				c.Otel.Insecure = true
			},
			wantErr: "OTEL_INSECURE",
		},
		{
			name:    "zero batch size",
			mutate:  func(c *Config) { c.Import.BatchSize = 0 },
			wantErr: "batch_size",
		},
		{
			name:    "zero session ttl",
			mutate:  func(c *Config) { c.Session.CacheTTL = 0 },
			wantErr: "cache_ttl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := validate(c)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestServerAddress(t *testing.T) {
	s := ServerConfig{Host: "0.0.0.0", Port: 8080}
	assert.Equal(t, "0.0.0.0:8080", s.Address())
}
