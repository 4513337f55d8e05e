// Package config loads service settings from defaults, an optional YAML
// file and PAYMENTS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/damon-houk/payment-query-service/internal/infrastructure/logger"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. PAYMENTS_STORE_DRIVER
const EnvPrefix = "PAYMENTS"

// FileEnv names the variable holding the config file path when no flag is given
const FileEnv = "PAYMENTS_CONFIG"

// Store drivers
const (
	DriverMemory   = "memory"
	DriverBadger   = "badger"
	DriverBolt     = "bolt"
	DriverPostgres = "postgres"
	DriverHTTP     = "http"
)

// SeedSample seeds an empty store with the bundled dataset
const SeedSample = "sample"

// ErrInvalidConfig is matched by every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the root configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Store    StoreConfig    `mapstructure:"store"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Query    QueryConfig    `mapstructure:"query"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	StrictAccept bool          `mapstructure:"strict_accept"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LogConfig configures the logger
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// StoreConfig selects the record provider
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	// Path is the badger directory or bolt file
	Path string `mapstructure:"path"`
	DSN  string `mapstructure:"dsn"`
	// Seed is "sample" or a JSON file loaded into the store when it is empty
	Seed string `mapstructure:"seed"`
}

// UpstreamConfig configures the http driver
type UpstreamConfig struct {
	URL        string        `mapstructure:"url"`
	Token      string        `mapstructure:"token"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// CacheConfig configures the snapshot cache; a zero TTL disables it
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// QueryConfig configures query parsing
type QueryConfig struct {
	// Timezone interprets timestamps that carry no offset
	Timezone string `mapstructure:"timezone"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.strict_accept", false)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.path", "./data")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.seed", "")
	v.SetDefault("upstream.url", "")
	v.SetDefault("upstream.token", "")
	v.SetDefault("upstream.timeout", 10*time.Second)
	v.SetDefault("upstream.max_retries", 3)
	v.SetDefault("cache.ttl", time.Duration(0))
	v.SetDefault("query.timezone", "UTC")
}

// Load reads the configuration. path may be empty, in which case
// PAYMENTS_CONFIG is consulted; with neither set only defaults and the
// environment apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv(FileEnv)
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the driver and the keys it depends on
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverBadger, DriverBolt:
		if c.Store.Path == "" {
			return invalidf("store.path is required for the %s driver", c.Store.Driver)
		}
	case DriverPostgres:
		if c.Store.DSN == "" {
			return invalidf("store.dsn is required for the postgres driver")
		}
	case DriverHTTP:
		if c.Upstream.URL == "" {
			return invalidf("upstream.url is required for the http driver")
		}
	default:
		return invalidf("unknown store.driver %q", c.Store.Driver)
	}

	if c.Store.Seed != "" && c.Store.Driver == DriverHTTP {
		return invalidf("store.seed is not supported by the http driver")
	}
	if c.Upstream.MaxRetries < 0 {
		return invalidf("upstream.max_retries must be >= 0")
	}
	if c.Cache.TTL < 0 {
		return invalidf("cache.ttl must be >= 0")
	}
	if _, err := c.Level(); err != nil {
		return invalidf("%v", err)
	}
	if _, err := c.Location(); err != nil {
		return invalidf("query.timezone: %v", err)
	}

	return nil
}

// Level returns the configured log level
func (c *Config) Level() (logger.Level, error) {
	return logger.ParseLevel(c.Log.Level)
}

// Location returns the zone for timestamps without an offset
func (c *Config) Location() (*time.Location, error) {
	if c.Query.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Query.Timezone)
}

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
