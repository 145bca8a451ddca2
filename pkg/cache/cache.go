// Package cache holds the pluggable TTL store that sits in front of the
// hadith API read endpoints, plus the codecs and key helpers used on top
// of it.
package cache

import (
	"context"
	"time"
)

// Adapter is the cache contract used by the resource accessors.
//
// Implementations must be safe for concurrent use and must never return an
// entry whose TTL has passed. Set overwrites unconditionally; a ttl <= 0
// leaves the key absent. Any implementation (in-process map, Redis, ...)
// can replace the default without changes elsewhere.
type Adapter interface {
	// Get returns (value, true, nil) on hit and (nil, false, nil) on miss.
	// The caller owns the returned slice.
	// Store failures are reported as (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Noop never stores anything. It backs clients built with caching disabled.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Noop) Delete(context.Context, string) error { return nil }

func (Noop) Clear(context.Context) error { return nil }

var _ Adapter = Noop{}
