package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeBackoff(t *testing.T) {
	t.Parallel()

	base := time.Second
	assert.Equal(t, 1*time.Second, computeBackoff(base, time.Minute, 0))
	assert.Equal(t, 2*time.Second, computeBackoff(base, time.Minute, 1))
	assert.Equal(t, 4*time.Second, computeBackoff(base, time.Minute, 2))
	assert.Equal(t, time.Minute, computeBackoff(base, time.Minute, 10))
	assert.Equal(t, time.Minute, computeBackoff(base, time.Minute, 1000))

	prev := time.Duration(0)
	for i := 0; i < 40; i++ {
		d := computeBackoff(base, time.Minute, i)
		assert.GreaterOrEqual(t, d, prev)
		prev = d
	}
}

func TestSleepCtxStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := sleepCtx(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestParseRetryAfter(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	assert.Zero(t, parseRetryAfter(h))

	h.Set("Retry-After", "120")
	assert.Equal(t, 120*time.Second, parseRetryAfter(h))

	h.Set("Retry-After", "100000")
	assert.Equal(t, maxRetryAfter, parseRetryAfter(h))

	h.Set("Retry-After", "soon")
	assert.Zero(t, parseRetryAfter(h))

	h.Set("Retry-After", time.Now().Add(30*time.Second).UTC().Format(http.TimeFormat))
	d := parseRetryAfter(h)
	assert.Greater(t, d, 20*time.Second)
	assert.LessOrEqual(t, d, 30*time.Second)
}

func TestParseResetTime(t *testing.T) {
	t.Parallel()

	fields := map[string]json.RawMessage{"reset_time": json.RawMessage(`1893456000`)}
	assert.Equal(t, time.Unix(1893456000, 0), parseResetTime(http.Header{}, fields))

	fields = map[string]json.RawMessage{"resetTime": json.RawMessage(`"2030-01-01T00:00:00Z"`)}
	assert.True(t, parseResetTime(http.Header{}, fields).Equal(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))

	h := http.Header{}
	h.Set("X-RateLimit-Reset", "1893456000000")
	assert.Equal(t, time.UnixMilli(1893456000000), parseResetTime(h, nil))

	assert.True(t, parseResetTime(http.Header{}, nil).IsZero())
}
