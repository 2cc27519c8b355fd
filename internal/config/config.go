// Package config loads kmatcher settings from an optional YAML file and
// KMATCHER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

const envPrefix = "KMATCHER"

// Config is the full application configuration.
type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	Store   StoreConfig   `mapstructure:"store"`
	Log     LogConfig     `mapstructure:"log"`
}

// BackendConfig describes the questionnaire server.
type BackendConfig struct {
	URL       string  `mapstructure:"url"`
	RateLimit float64 `mapstructure:"rate_limit"` // requests per second, 0 = unlimited
	Burst     int     `mapstructure:"burst"`
	Validate  bool    `mapstructure:"validate"`
}

// StoreConfig selects where answers and history are kept.
type StoreConfig struct {
	Backend string      `mapstructure:"backend"`
	Path    string      `mapstructure:"path"` // SQLite file, empty = default location
	Redis   RedisConfig `mapstructure:"redis"`
}

// RedisConfig is used when Store.Backend is "redis".
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// LogConfig controls the log file.
type LogConfig struct {
	File    string `mapstructure:"file"` // empty = next to the database
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			URL:      "http://localhost:8000",
			Burst:    1,
			Validate: true,
		},
		Store: StoreConfig{
			Backend: StoreSQLite,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "kmatcher:",
			},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("backend.url", cfg.Backend.URL)
	v.SetDefault("backend.rate_limit", cfg.Backend.RateLimit)
	v.SetDefault("backend.burst", cfg.Backend.Burst)
	v.SetDefault("backend.validate", cfg.Backend.Validate)

	v.SetDefault("store.backend", cfg.Store.Backend)
	v.SetDefault("store.path", cfg.Store.Path)
	v.SetDefault("store.redis.addr", cfg.Store.Redis.Addr)
	v.SetDefault("store.redis.password", cfg.Store.Redis.Password)
	v.SetDefault("store.redis.db", cfg.Store.Redis.DB)
	v.SetDefault("store.redis.prefix", cfg.Store.Redis.Prefix)

	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.console", cfg.Log.Console)
}

// Load reads path (if not empty) over the defaults, then applies the
// environment. KMATCHER_BACKEND_URL sets backend.url and so on; a few
// short aliases are bound as well.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Short aliases
	_ = v.BindEnv("store.path", "KMATCHER_STORE_PATH", "KMATCHER_DB")
	_ = v.BindEnv("store.redis.addr", "KMATCHER_STORE_REDIS_ADDR", "KMATCHER_REDIS_ADDR")
	_ = v.BindEnv("store.redis.password", "KMATCHER_STORE_REDIS_PASSWORD", "KMATCHER_REDIS_PASSWORD")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail later.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Backend.URL) == "" {
		errs = append(errs, errors.New("backend.url is required"))
	}
	if c.Backend.RateLimit < 0 {
		errs = append(errs, errors.New("backend.rate_limit must not be negative"))
	}
	switch c.Store.Backend {
	case StoreSQLite, StoreMemory:
	case StoreRedis:
		if c.Store.Redis.Addr == "" {
			errs = append(errs, errors.New("store.redis.addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.backend %q", c.Store.Backend))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
