package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// maxRetryAfter caps any server-provided wait hint.
const maxRetryAfter = 5 * time.Minute

// computeBackoff returns the wait after failed attempt n (0-indexed):
// base * 2^n, capped at maxBackoff. The sequence is non-decreasing.
//
// Example progression (base=1s):
// Attempt 0: 1s
// Attempt 1: 2s
// Attempt 2: 4s
// ...capped at maxBackoff
func computeBackoff(base, maxBackoff time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = DefaultRetryDelay
	}
	if attempt < 0 {
		attempt = 0
	}

	// Cap the exponent to prevent overflow
	const maxExponent = 20
	if attempt > maxExponent {
		attempt = maxExponent
	}

	backoff := base << uint(attempt)
	if backoff <= 0 || (maxBackoff > 0 && backoff > maxBackoff) {
		return maxBackoff
	}
	return backoff
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// parseRetryAfter extracts the retry delay from a Retry-After header.
// Returns 0 if header is missing or invalid.
//
// Retry-After can be:
// - Number of seconds: "120"
// - HTTP date: "Wed, 21 Oct 2015 07:28:00 GMT"
func parseRetryAfter(h http.Header) time.Duration {
	retryAfter := strings.TrimSpace(h.Get("Retry-After"))
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil {
		if seconds <= 0 {
			return 0
		}
		return capHint(time.Duration(seconds) * time.Second)
	}

	if t, err := http.ParseTime(retryAfter); err == nil {
		return capHint(time.Until(t))
	}

	return 0
}

// parseResetTime reads the absolute reset time of a rate limit from the
// error body (resetTime / reset_time) or the X-RateLimit-Reset header.
// Numbers are unix seconds; strings may also be RFC 3339.
func parseResetTime(h http.Header, fields map[string]json.RawMessage) time.Time {
	for _, name := range []string{"resetTime", "reset_time"} {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if t, ok := parseResetValue(s); ok {
				return t
			}
			continue
		}
		var n float64
		if err := json.Unmarshal(raw, &n); err == nil && n > 0 {
			return unixish(n)
		}
	}

	if t, ok := parseResetValue(h.Get("X-RateLimit-Reset")); ok {
		return t
	}
	return time.Time{}
}

func parseResetValue(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil && n > 0 {
		return unixish(n), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// unixish reads n as unix seconds or milliseconds. Values too small to be
// a timestamp are taken as seconds from now.
func unixish(n float64) time.Time {
	switch {
	case n > 1e12:
		return time.UnixMilli(int64(n))
	case n < 1e9:
		return time.Now().Add(time.Duration(n * float64(time.Second)))
	default:
		return time.Unix(int64(n), 0)
	}
}

func capHint(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	if d > maxRetryAfter {
		return maxRetryAfter
	}
	return d
}
