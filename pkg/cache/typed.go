package cache

import (
	"context"
	"fmt"
	"time"
)

// Typed is a view of an Adapter that stores values of type V through a Codec.
type Typed[V any] struct {
	store Adapter
	codec Codec[V]
}

func NewTyped[V any](store Adapter, codec Codec[V]) *Typed[V] {
	if codec == nil {
		codec = JSON[V]{}
	}
	return &Typed[V]{store: store, codec: codec}
}

// Get decodes the entry stored under key. An entry that fails to decode is
// dropped and reported as an error so the caller can refetch.
func (t *Typed[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V

	raw, ok, err := t.store.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}

	v, err := t.codec.Decode(raw)
	if err != nil {
		_ = t.store.Delete(ctx, key)
		return zero, false, fmt.Errorf("cache: decode %q: %w", key, err)
	}
	return v, true, nil
}

func (t *Typed[V]) Set(ctx context.Context, key string, v V, ttl time.Duration) error {
	raw, err := t.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("cache: encode %q: %w", key, err)
	}
	return t.store.Set(ctx, key, raw, ttl)
}

func (t *Typed[V]) Delete(ctx context.Context, key string) error {
	return t.store.Delete(ctx, key)
}
