package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix = "CATFRAME"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	envProduction      = "production"
	minProdSecretBytes = 32
)

// Config is the process-wide configuration. It is built once by Load and passed explicitly.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port              string        `mapstructure:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite | postgres
	DSN    string `mapstructure:"dsn"`
}

type AuthConfig struct {
	SecretKey                string        `mapstructure:"secret_key"`
	Algorithm                string        `mapstructure:"algorithm"`
	AccessTokenExpireMinutes int           `mapstructure:"access_token_expire_minutes"`
	ResetTokenTTL            time.Duration `mapstructure:"reset_token_ttl"`
	BcryptCost               int           `mapstructure:"bcrypt_cost"`
	// DebugEchoResetToken adds the issued reset token to forgot-password responses.
	DebugEchoResetToken bool `mapstructure:"debug_echo_reset_token"`
}

// AccessTokenTTL converts the configured minutes to a duration.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenExpireMinutes) * time.Minute
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console | json
}

// IsProduction reports whether the app runs in the production environment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Environment, envProduction) || strings.EqualFold(c.App.Environment, "prod")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "CatFrame API")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_header_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.idle_timeout", "60s")

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "catframe.db")

	// secret_key has no usable default; registering it lets env overrides reach Unmarshal.
	v.SetDefault("auth.secret_key", "")
	v.SetDefault("auth.algorithm", "HS256")
	v.SetDefault("auth.access_token_expire_minutes", 30)
	v.SetDefault("auth.reset_token_ttl", "1h")
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.debug_echo_reset_token", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads config.yml from the given directories (default "configs"), applies
// CATFRAME_* environment overrides and validates the result. A missing file is not an error.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yml")
	if len(paths) == 0 {
		paths = []string{"configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings that have no safe fallback.
func (c *Config) Validate() error {
	if port, err := strconv.Atoi(strings.TrimPrefix(c.Server.Port, ":")); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %q", c.Server.Port)
	}

	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn must be set")
	}

	if c.Auth.SecretKey == "" {
		return errors.New("auth.secret_key must be set (CATFRAME_AUTH_SECRET_KEY)")
	}
	switch c.Auth.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("unsupported signing algorithm: %q", c.Auth.Algorithm)
	}
	if c.Auth.AccessTokenExpireMinutes <= 0 {
		return fmt.Errorf("auth.access_token_expire_minutes must be positive, got %d", c.Auth.AccessTokenExpireMinutes)
	}
	if c.Auth.ResetTokenTTL <= 0 {
		return fmt.Errorf("auth.reset_token_ttl must be positive, got %s", c.Auth.ResetTokenTTL)
	}

	if c.IsProduction() {
		if len(c.Auth.SecretKey) < minProdSecretBytes {
			return fmt.Errorf("auth.secret_key must be at least %d bytes in production", minProdSecretBytes)
		}
		if c.Auth.DebugEchoResetToken {
			return errors.New("auth.debug_echo_reset_token must be disabled in production")
		}
	}
	return nil
}
