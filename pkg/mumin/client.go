// Package mumin is a Go client for the Mumin hadith API.
//
//	client, err := mumin.New(os.Getenv("MUMIN_API_KEY"))
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	h, err := client.Hadiths.Get(ctx, 1, "en")
//
// Read endpoints are cached in process by default; see WithCache and
// WithoutCache.
package mumin

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/abubakrmuminov/mumin-api-cli/pkg/cache"
	"github.com/abubakrmuminov/mumin-api-cli/pkg/logging/logging"
	"github.com/abubakrmuminov/mumin-api-cli/pkg/transport"
)

// Client is the entry point. It is safe for concurrent use; all accessors
// share one transport and one cache.
type Client struct {
	Hadiths     *HadithsService
	Collections *CollectionsService
	Search      *SearchService

	cfg       Config
	transport *transport.Client
	cache     cache.Adapter
	owned     cache.Adapter // closed by Close; nil for injected adapters
	logger    *zap.Logger
}

// New builds a client. An empty apiKey fails with a KindConfiguration
// error.
func New(apiKey string, opts ...Option) (*Client, error) {
	cfg := defaultConfig(apiKey)
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, transport.ConfigError("API key is required. Get one at https://dashboard.mumin.ink")
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}

	logger := logging.OrNop(cfg.Logger).Named("mumin")

	tr, err := transport.New(transport.Config{
		BaseURL:         cfg.BaseURL,
		APIKey:          cfg.APIKey,
		Timeout:         cfg.Timeout,
		Retries:         cfg.Retries,
		RetryDelay:      cfg.RetryDelay,
		MaxBackoff:      cfg.MaxBackoff,
		HonorRetryAfter: cfg.HonorRetryAfter,
		Headers:         cfg.Headers,
		HTTPClient:      cfg.HTTPClient,
	}, cfg.Logger)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:       cfg,
		transport: tr,
		logger:    logger,
	}

	store, err := c.buildCache()
	if err != nil {
		_ = tr.Close()
		return nil, err
	}
	c.cache = store

	core, err := newCore(tr, store, cfg, logger)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	c.Hadiths = &HadithsService{core: core}
	c.Collections = &CollectionsService{core: core}
	c.Search = &SearchService{core: core}

	logger.Debug("mumin client ready",
		zap.String("base_url", cfg.BaseURL),
		zap.Bool("cache_enabled", cfg.CacheEnabled),
		zap.String("cache_codec", cfg.CacheCodec),
	)
	return c, nil
}

func (c *Client) buildCache() (cache.Adapter, error) {
	cfg := c.cfg
	if !cfg.CacheEnabled {
		return cache.Noop{}, nil
	}

	backend := cfg.CacheBackend
	inner := cfg.Cache
	if inner == nil {
		mem := cache.NewMemory(cfg.SweepInterval)
		c.owned = mem
		inner = mem
		if backend == "" {
			backend = cache.BackendMemory
		}
	}
	if backend == "" {
		backend = "custom"
	}
	return cache.NewLogging(inner, backend, c.logger.Named("cache")), nil
}

// Config returns the resolved configuration.
func (c *Client) Config() Config { return c.cfg }

// ClearCache removes every cached response.
func (c *Client) ClearCache(ctx context.Context) error {
	return c.cache.Clear(ctx)
}

// Close stops the built-in cache sweep and releases idle connections.
// Injected cache adapters are left open.
func (c *Client) Close() error {
	var errs []error
	if closer, ok := c.owned.(interface{ Close() error }); ok {
		errs = append(errs, closer.Close())
	}
	if c.transport != nil {
		errs = append(errs, c.transport.Close())
	}
	return errors.Join(errs...)
}
