package transport

import (
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Version is reported in the User-Agent and X-Mumin-SDK headers.
const Version = "1.0.0"

const (
	DefaultTimeout    = 10 * time.Second
	DefaultRetryDelay = time.Second
	DefaultMaxBackoff = 60 * time.Second
)

type Config struct {
	//required fields
	BaseURL string
	APIKey  string

	Timeout    time.Duration // per-attempt timeout (default: 10s)
	Retries    int           // retries after the first attempt; 0 disables retrying
	RetryDelay time.Duration // base backoff (default: 1s)
	MaxBackoff time.Duration // cap for a single backoff wait (default: 60s, never below RetryDelay)

	// HonorRetryAfter makes a rate-limited attempt wait at least as long as
	// the server's hint before retrying.
	HonorRetryAfter bool

	// Headers are sent with every request, after the built-in ones.
	Headers map[string]string

	// Optional connection pool settings
	MaxIdleConns        int // default: 100
	MaxIdleConnsPerHost int // default: 10

	// Custom HTTP client (for testing or special configs)
	HTTPClient *http.Client
}

// Validate checks required fields and ranges.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ConfigError("api key is required")
	}
	if c.BaseURL == "" {
		return ConfigError("base URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ConfigError("base URL %q is not an absolute URL", c.BaseURL)
	}
	if c.Retries < 0 {
		return ConfigError("retries must not be negative, got %d", c.Retries)
	}
	return nil
}

// WithDefaults returns a copy of Config with sane defaults applied.
func (c *Config) WithDefaults() Config {
	cfg := *c

	// Normalize BaseURL: trim trailing slashes so we can safely append paths.
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = DefaultMaxBackoff
	}
	if cfg.MaxBackoff < cfg.RetryDelay {
		cfg.MaxBackoff = cfg.RetryDelay
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 100
	}
	if cfg.MaxIdleConnsPerHost <= 0 {
		cfg.MaxIdleConnsPerHost = 10
	}

	return cfg
}

// defaultTransport creates a pooled HTTP transport with reasonable timeouts.
func defaultTransport(cfg Config) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
