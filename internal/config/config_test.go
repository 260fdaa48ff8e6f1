package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stocktr-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SERVER_HOST", "SERVER_PORT", "PORT", "SERVER_MODE",
		"JWT_SECRET", "JWT_EXPIRE_HOURS", "BCRYPT_COST",
		"QUOTES_SYMBOLS", "QUOTES_API_KEY", "REDIS_ENABLED", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 3500, cfg.Server.Port)
	assert.Equal(t, config.DefaultJWTSecret, cfg.JWT.Secret)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TokenTTL())
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, config.DefaultSymbols, cfg.Quotes.Symbols)
	assert.Equal(t, int64(5<<20), cfg.Icon.MaxBytes)
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 8081
  mode: debug
jwt:
  secret: from-file
  expire_hours: 2
quotes:
  symbols: [AAPL, MSFT]
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("QUOTES_SYMBOLS", "nvda, amd ,")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.TokenTTL())
	assert.Equal(t, []string{"nvda", "amd"}, cfg.Quotes.Symbols)
	// untouched sections keep their defaults
	assert.Equal(t, "127.0.0.1", cfg.Database.Host)
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [oops"), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"defaults", func(*config.Config) {}, false},
		{"empty secret", func(c *config.Config) { c.JWT.Secret = "" }, true},
		{"default secret in release", func(c *config.Config) { c.Server.Mode = "release" }, true},
		{"custom secret in release", func(c *config.Config) {
			c.Server.Mode = "release"
			c.JWT.Secret = "a-real-secret"
		}, false},
		{"bad port", func(c *config.Config) { c.Server.Port = 0 }, true},
		{"bcrypt cost too low", func(c *config.Config) { c.Auth.BcryptCost = 2 }, true},
		{"low bcrypt cost outside release", func(c *config.Config) { c.Auth.BcryptCost = 4 }, false},
		{"low bcrypt cost in release", func(c *config.Config) {
			c.Server.Mode = "release"
			c.JWT.Secret = "prod-secret"
			c.Auth.BcryptCost = 4
		}, true},
		{"no symbols", func(c *config.Config) { c.Quotes.Symbols = nil }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Password = "pw"

	assert.Equal(t, "host=127.0.0.1 port=5432 user=postgres password=pw dbname=stocktr sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr())
	assert.Equal(t, "0.0.0.0:3500", cfg.Addr())
}
