package cache

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	BackendMemory    = "memory"
	BackendRedis     = "redis"
	BackendRistretto = "ristretto"
	BackendNone      = "none"
)

type Config struct {
	Backend       string
	Prefix        string
	SweepInterval time.Duration
	Ristretto     RistrettoConfig
}

// New builds the adapter selected by cfg.Backend. An empty backend selects
// memory. The redis backend requires redisClient.
func New(cfg Config, redisClient *redis.Client) (Adapter, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendMemory:
		return NewMemory(cfg.SweepInterval), nil
	case BackendRedis:
		if redisClient == nil {
			return nil, errors.New("cache: redis backend requires a redis client")
		}
		return NewRedis(redisClient, RedisConfig{
			Prefix: cfg.Prefix,
		}), nil
	case BackendRistretto:
		return NewRistretto(cfg.Ristretto)
	case BackendNone, "off", "disabled":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("cache: unknown backend %q", cfg.Backend)
	}
}
