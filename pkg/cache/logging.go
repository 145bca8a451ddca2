package cache

import (
	"context"
	"strings"
	"time"

	"github.com/abubakrmuminov/mumin-api-cli/pkg/metrics"
	"github.com/abubakrmuminov/mumin-api-cli/pkg/logging/logging"

	"go.uber.org/zap"
)

// Logging wraps an Adapter with logging + metrics.
type Logging struct {
	inner   Adapter
	backend string
	logger  *zap.Logger
}

// NewLogging returns an Adapter that logs every operation and records it
// under the given backend label. A nil logger falls back to the one
// carried by the request context.
func NewLogging(inner Adapter, backend string, logger *zap.Logger) *Logging {
	return &Logging{inner: inner, backend: backend, logger: logger}
}

// Unwrap returns the decorated adapter.
func (c *Logging) Unwrap() Adapter { return c.inner }

func (c *Logging) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	value, ok, err := c.inner.Get(ctx, key)

	result := "miss"
	if err != nil {
		result = "error"
	} else if ok {
		result = "hit"
	}
	c.record(ctx, "get", key, result, start, err)

	return value, ok, err
}

func (c *Logging) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	err := c.inner.Set(ctx, key, value, ttl)
	c.record(ctx, "set", key, resultOf(err), start, err, zap.Duration("ttl", ttl), zap.Int("size", len(value)))
	return err
}

func (c *Logging) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := c.inner.Delete(ctx, key)
	c.record(ctx, "delete", key, resultOf(err), start, err)
	return err
}

func (c *Logging) Clear(ctx context.Context) error {
	start := time.Now()
	err := c.inner.Clear(ctx)
	c.record(ctx, "clear", "", resultOf(err), start, err)
	return err
}

// Close closes the inner adapter when it supports it.
func (c *Logging) Close() error {
	if cl, ok := c.inner.(interface{ Close() error }); ok {
		return cl.Close()
	}
	return nil
}

func (c *Logging) record(ctx context.Context, op, key, result string, start time.Time, err error, extra ...zap.Field) {
	metrics.CacheOpsTotal.WithLabelValues(c.backend, op, result).Inc()

	fields := []zap.Field{
		zap.String("cache_backend", c.backend),
		zap.String("cache_result", result), // hit | miss | ok | error
		zap.Float64("latency_ms", float64(time.Since(start).Microseconds())/1000.0),
	}
	if key != "" {
		fields = append(fields,
			zap.String("cache_key", key),
			zap.String("resource", resourceOf(key)),
		)
	}
	fields = append(fields, extra...)

	logger := c.logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}

	msg := "cache_" + op
	if err != nil {
		logger.Warn(msg, append(fields, zap.Error(err))...)
		return
	}
	logger.Debug(msg, fields...)
}

func resultOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// resourceOf extracts the leading segment of a key built by Key.
func resourceOf(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}

var _ Adapter = (*Logging)(nil)
