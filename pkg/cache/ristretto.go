package cache

import (
	"bytes"
	"context"
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"
)

// RistrettoConfig sizes the admission/eviction structures. Zero fields get
// DefaultRistrettoConfig values.
type RistrettoConfig struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
}

// DefaultRistrettoConfig fits roughly 64 MiB of cached JSON.
var DefaultRistrettoConfig = RistrettoConfig{
	NumCounters: 1e5,
	MaxCost:     64 << 20,
	BufferItems: 64,
}

// Ristretto is a bounded in-process Adapter. Unlike Memory it evicts under
// memory pressure, so a Get after Set may miss even before the TTL ends.
type Ristretto struct {
	c *rc.Cache
}

func NewRistretto(cfg RistrettoConfig) (*Ristretto, error) {
	if cfg.NumCounters == 0 {
		cfg.NumCounters = DefaultRistrettoConfig.NumCounters
	}
	if cfg.MaxCost == 0 {
		cfg.MaxCost = DefaultRistrettoConfig.MaxCost
	}
	if cfg.BufferItems == 0 {
		cfg.BufferItems = DefaultRistrettoConfig.BufferItems
	}
	if cfg.NumCounters < 0 || cfg.MaxCost < 0 || cfg.BufferItems < 0 {
		return nil, errors.New("ristretto: invalid config")
	}

	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &Ristretto{c: c}, nil
}

func (r *Ristretto) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := r.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		r.c.Del(key)
		return nil, false, nil
	}
	return bytes.Clone(b), true, nil
}

// Set stores a copy of value with cost len(value). The write buffer is
// drained before returning so the value is visible to the next Get.
func (r *Ristretto) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		r.c.Del(key)
		return nil
	}

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	cost := int64(len(valueCopy))
	if cost == 0 {
		cost = 1
	}
	r.c.SetWithTTL(key, valueCopy, cost, ttl)
	r.c.Wait()
	return nil
}

func (r *Ristretto) Delete(_ context.Context, key string) error {
	r.c.Del(key)
	return nil
}

func (r *Ristretto) Clear(_ context.Context) error {
	r.c.Clear()
	return nil
}

func (r *Ristretto) Close() error {
	r.c.Wait()
	r.c.Close()
	return nil
}

var _ Adapter = (*Ristretto)(nil)
