package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600))
	return dir
}

func TestLoad_DefaultsWithEnvSecret(t *testing.T) {
	t.Setenv("CATFRAME_AUTH_SECRET_KEY", "dev-secret")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "CatFrame API", cfg.App.Name)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadHeaderTimeout)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "dev-secret", cfg.Auth.SecretKey)
	assert.Equal(t, "HS256", cfg.Auth.Algorithm)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, time.Hour, cfg.Auth.ResetTokenTTL)
	assert.False(t, cfg.Auth.DebugEchoResetToken)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "9090"
database:
  driver: postgres
  dsn: postgres://catframe@localhost:5432/catframe
auth:
  secret_key: from-file
  algorithm: HS512
  access_token_expire_minutes: 15
  reset_token_ttl: 30m
log:
  level: debug
  format: json
`)
	t.Setenv("CATFRAME_AUTH_SECRET_KEY", "from-env")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "from-env", cfg.Auth.SecretKey)
	assert.Equal(t, "HS512", cfg.Auth.Algorithm)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, 30*time.Minute, cfg.Auth.ResetTokenTTL)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("CATFRAME_AUTH_SECRET_KEY", "")

	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret_key")
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := writeConfig(t, "server: [unclosed")
	t.Setenv("CATFRAME_AUTH_SECRET_KEY", "x")

	_, err := Load(dir)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			App:      AppConfig{Environment: "development"},
			Server:   ServerConfig{Port: "8080"},
			Database: DatabaseConfig{Driver: DriverSQLite, DSN: "x.db"},
			Auth: AuthConfig{
				SecretKey:                "s",
				Algorithm:                "HS256",
				AccessTokenExpireMinutes: 30,
				ResetTokenTTL:            time.Hour,
			},
		}
	}

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"port with colon", func(c *Config) { c.Server.Port = ":8080" }, false},
		{"bad port", func(c *Config) { c.Server.Port = "http" }, true},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, true},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }, true},
		{"rsa algorithm", func(c *Config) { c.Auth.Algorithm = "RS256" }, true},
		{"zero ttl", func(c *Config) { c.Auth.AccessTokenExpireMinutes = 0 }, true},
		{"zero reset ttl", func(c *Config) { c.Auth.ResetTokenTTL = 0 }, true},
		{"short secret in production", func(c *Config) { c.App.Environment = "production" }, true},
		{"debug echo in production", func(c *Config) {
			c.App.Environment = "production"
			c.Auth.SecretKey = "0123456789abcdef0123456789abcdef"
			c.Auth.DebugEchoResetToken = true
		}, true},
		{"production ok", func(c *Config) {
			c.App.Environment = "production"
			c.Auth.SecretKey = "0123456789abcdef0123456789abcdef"
		}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
