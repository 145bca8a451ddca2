package mumin

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/abubakrmuminov/mumin-api-cli/pkg/cache"
)

const (
	DefaultBaseURL       = "https://api.hadith.mumin.ink/v1"
	DefaultTimeout       = 10 * time.Second
	DefaultRetries       = 2
	DefaultRetryDelay    = time.Second
	DefaultCacheTTL      = time.Hour
	DefaultSweepInterval = cache.DefaultSweepInterval
)

// Config is the resolved client configuration. Build it with New and
// Options; it is not modified after construction.
type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	MaxBackoff time.Duration

	HonorRetryAfter bool
	Headers         map[string]string
	HTTPClient      *http.Client

	CacheEnabled  bool
	Cache         cache.Adapter // injected adapter; the caller owns it
	CacheBackend  string        // metrics label for the adapter
	CacheTTL      time.Duration // default TTL
	CacheCodec    string        // json | msgpack | cbor
	SweepInterval time.Duration

	Logger *zap.Logger
}

func defaultConfig(apiKey string) Config {
	return Config{
		APIKey:        apiKey,
		BaseURL:       DefaultBaseURL,
		Timeout:       DefaultTimeout,
		Retries:       DefaultRetries,
		RetryDelay:    DefaultRetryDelay,
		CacheEnabled:  true,
		CacheTTL:      DefaultCacheTTL,
		CacheCodec:    cache.CodecJSON,
		SweepInterval: DefaultSweepInterval,
	}
}

// Option customizes a Client.
type Option func(*Config)

func WithBaseURL(u string) Option {
	return func(c *Config) { c.BaseURL = u }
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithRetries sets how many times a failed request is retried. Zero means
// a single attempt.
func WithRetries(n int) Option {
	return func(c *Config) { c.Retries = n }
}

// WithRetryDelay sets the base backoff; the wait doubles after each failure.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Config) { c.RetryDelay = d }
}

func WithMaxBackoff(d time.Duration) Option {
	return func(c *Config) { c.MaxBackoff = d }
}

// WithHonorRetryAfter makes retries after a 429 wait at least as long as
// the server asks.
func WithHonorRetryAfter() Option {
	return func(c *Config) { c.HonorRetryAfter = true }
}

func WithHeader(key, value string) Option {
	return func(c *Config) {
		if c.Headers == nil {
			c.Headers = map[string]string{}
		}
		c.Headers[key] = value
	}
}

func WithHeaders(h map[string]string) Option {
	return func(c *Config) {
		for k, v := range h {
			WithHeader(k, v)(c)
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Config) { c.HTTPClient = hc }
}

// WithCache injects a cache adapter. The client does not close it.
func WithCache(a cache.Adapter) Option {
	return func(c *Config) {
		c.Cache = a
		c.CacheEnabled = true
	}
}

// WithCacheBackendName labels an injected adapter in logs and metrics.
func WithCacheBackendName(name string) Option {
	return func(c *Config) { c.CacheBackend = name }
}

func WithoutCache() Option {
	return func(c *Config) { c.CacheEnabled = false }
}

// WithCacheTTL sets the default TTL, used by single-hadith lookups.
func WithCacheTTL(d time.Duration) Option {
	return func(c *Config) { c.CacheTTL = d }
}

// WithCodec selects how cached values are serialized.
func WithCodec(name string) Option {
	return func(c *Config) { c.CacheCodec = name }
}

// WithSweepInterval sets how often the built-in memory cache drops expired
// entries.
func WithSweepInterval(d time.Duration) Option {
	return func(c *Config) { c.SweepInterval = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Config) { c.Logger = l }
}
