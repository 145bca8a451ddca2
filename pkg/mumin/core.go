package mumin

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/abubakrmuminov/mumin-api-cli/pkg/cache"
	"github.com/abubakrmuminov/mumin-api-cli/pkg/transport"
)

const (
	collectionsTTL = 24 * time.Hour
	dailyTTL       = time.Hour
	listTTL        = 10 * time.Minute
	searchTTL      = 5 * time.Minute
)

// core is what every accessor shares: the transport, one typed cache view
// per cached shape, and the default TTL.
type core struct {
	transport  *transport.Client
	logger     *zap.Logger
	defaultTTL time.Duration

	hadith      *cache.Typed[Hadith]
	collection  *cache.Typed[Collection]
	collections *cache.Typed[[]Collection]
	page        *cache.Typed[Page[Hadith]]
}

func newCore(tr *transport.Client, store cache.Adapter, cfg Config, logger *zap.Logger) (*core, error) {
	hc, err := cache.CodecByName[Hadith](cfg.CacheCodec)
	if err != nil {
		return nil, transport.ConfigError("%v", err)
	}
	cc, err := cache.CodecByName[Collection](cfg.CacheCodec)
	if err != nil {
		return nil, transport.ConfigError("%v", err)
	}
	lc, err := cache.CodecByName[[]Collection](cfg.CacheCodec)
	if err != nil {
		return nil, transport.ConfigError("%v", err)
	}
	pc, err := cache.CodecByName[Page[Hadith]](cfg.CacheCodec)
	if err != nil {
		return nil, transport.ConfigError("%v", err)
	}

	return &core{
		transport:   tr,
		logger:      logger,
		defaultTTL:  cfg.CacheTTL,
		hadith:      cache.NewTyped(store, hc),
		collection:  cache.NewTyped(store, cc),
		collections: cache.NewTyped(store, lc),
		page:        cache.NewTyped(store, pc),
	}, nil
}

// cachedRead returns the cached value for key, or calls fetch and stores
// its result for ttl. Cache failures never fail the read: a broken read is
// a miss and a broken write only gets logged.
func cachedRead[V any](
	ctx context.Context,
	c *core,
	store *cache.Typed[V],
	key string,
	ttl time.Duration,
	fetch func(context.Context) (V, error),
) (V, error) {
	v, ok, err := store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed, fetching upstream",
			zap.String("cache_key", key),
			zap.Error(err),
		)
	} else if ok {
		return v, nil
	}

	v, err = fetch(ctx)
	if err != nil {
		var zero V
		return zero, err
	}

	if err := store.Set(ctx, key, v, ttl); err != nil {
		c.logger.Warn("cache write failed",
			zap.String("cache_key", key),
			zap.Error(err),
		)
	}
	return v, nil
}

func getOne[V any](ctx context.Context, c *core, path string, params transport.Params) (V, error) {
	var v V
	res, err := c.transport.Get(ctx, path, params)
	if err != nil {
		return v, err
	}
	if err := res.Decode(&v); err != nil {
		return v, transport.NewError(transport.KindAPI, res.Status, err.Error(), err)
	}
	return v, nil
}

func getPage[T any](ctx context.Context, c *core, path string, params transport.Params) (Page[T], error) {
	var p Page[T]
	res, err := c.transport.Get(ctx, path, params)
	if err != nil {
		return p, err
	}
	if err := res.Decode(&p.Items); err != nil {
		return p, transport.NewError(transport.KindAPI, res.Status, err.Error(), err)
	}
	if len(res.Meta) > 0 {
		var m Meta
		if err := json.Unmarshal(res.Meta, &m); err == nil {
			p.Meta = &m
		} else {
			c.logger.Debug("ignoring malformed pagination meta", zap.Error(err))
		}
	}
	return p, nil
}
