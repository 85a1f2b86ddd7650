// Package config loads hikelog settings with viper.
//
// PRECEDENCE (highest wins):
//
//	cobra flag bound with BindPFlag
//	HIKELOG_* environment variable (db.path → HIKELOG_DB_PATH)
//	hikelog.yaml in ./ or $HOME/.hikelog (or the file named by --config)
//	the defaults below
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable viper consults.
const EnvPrefix = "HIKELOG"

// MinSecretLength is the shortest auth.secret accepted. HS256 keys shorter
// than the hash output weaken the signature.
const MinSecretLength = 32

// Config is the fully resolved configuration.
type Config struct {
	DB     DBConfig     `mapstructure:"db"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Auth   AuthConfig   `mapstructure:"auth"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text or json
}

// AuthConfig controls the optional bearer-token guard on the HTTP API.
// An empty Secret leaves the API open, which suits a single local user.
type AuthConfig struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// Enabled reports whether the HTTP API requires a token.
func (a AuthConfig) Enabled() bool {
	return a.Secret != ""
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// New returns a viper instance with defaults, env binding and config file
// discovery set up. configFile, when non-empty, replaces discovery.
func New(configFile string) *viper.Viper {
	v := viper.New()

	v.SetDefault("db.path", "data/hikelog.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_ttl", "24h")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("hikelog")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.hikelog")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the config file (if any), unmarshals every source into a Config
// and validates it.
//
// A missing file found through discovery is fine; a file named explicitly
// with --config must exist.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot check by type alone.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DB.Path) == "" {
		return errors.New("config: db.path must not be empty")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range 1-65535", c.Server.Port)
	}
	if !slices.Contains(logLevels, c.Log.Level) {
		return fmt.Errorf("config: log.level %q must be one of %s", c.Log.Level, strings.Join(logLevels, ", "))
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		return fmt.Errorf("config: log.format %q must be one of %s", c.Log.Format, strings.Join(logFormats, ", "))
	}
	if c.Auth.Enabled() && len(c.Auth.Secret) < MinSecretLength {
		return fmt.Errorf("config: auth.secret must be at least %d characters", MinSecretLength)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("config: auth.token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	return nil
}
