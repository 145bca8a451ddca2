// Package config loads the gateway configuration from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/abubakrmuminov/mumin-api-cli/pkg/cache"
)

// Config holds all gateway configuration
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	Env      string `env:"ENV" envDefault:"production"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	API   APIConfig
	Cache CacheConfig
}

// APIConfig configures the upstream hadith API client
type APIConfig struct {
	Key             string        `env:"MUMIN_API_KEY,required,notEmpty"`
	BaseURL         string        `env:"MUMIN_BASE_URL" envDefault:"https://api.hadith.mumin.ink/v1"`
	Timeout         time.Duration `env:"MUMIN_TIMEOUT" envDefault:"10s"`
	Retries         int           `env:"MUMIN_RETRIES" envDefault:"2"`
	RetryDelay      time.Duration `env:"MUMIN_RETRY_DELAY" envDefault:"1s"`
	HonorRetryAfter bool          `env:"MUMIN_HONOR_RETRY_AFTER" envDefault:"false"`
}

// CacheConfig selects and tunes the response cache
type CacheConfig struct {
	Backend   string        `env:"CACHE_BACKEND" envDefault:"memory"`
	Codec     string        `env:"CACHE_CODEC" envDefault:"json"`
	TTL       time.Duration `env:"CACHE_TTL" envDefault:"1h"`
	Prefix    string        `env:"CACHE_PREFIX" envDefault:"mumin"`
	Sweep     time.Duration `env:"CACHE_SWEEP_INTERVAL" envDefault:"1m"`
	RedisAddr string        `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
}

// Load reads configuration from the process environment.
func Load() (*Config, error) {
	return load(env.Options{})
}

// LoadFrom reads configuration from the given variables instead of the
// process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	return load(env.Options{Environment: vars})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Cache.Backend) {
	case cache.BackendMemory, cache.BackendRedis, cache.BackendRistretto, cache.BackendNone:
	default:
		return fmt.Errorf("config: CACHE_BACKEND must be memory, redis, ristretto or none, got %q", c.Cache.Backend)
	}
	switch strings.ToLower(c.Cache.Codec) {
	case cache.CodecJSON, cache.CodecMsgpack, cache.CodecCBOR:
	default:
		return fmt.Errorf("config: CACHE_CODEC must be json, msgpack or cbor, got %q", c.Cache.Codec)
	}
	if c.API.Retries < 0 {
		return fmt.Errorf("config: MUMIN_RETRIES must not be negative, got %d", c.API.Retries)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("config: MUMIN_TIMEOUT must be positive, got %s", c.API.Timeout)
	}
	return nil
}

// IsDev reports whether the gateway runs in a development environment.
func (c *Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "development"
}
