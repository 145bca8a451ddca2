package mumin

import (
	"context"
	"net/url"

	"github.com/abubakrmuminov/mumin-api-cli/pkg/cache"
)

// CollectionsService reads hadith collections. Results are cached for a day.
type CollectionsService struct {
	core *core
}

func (s *CollectionsService) List(ctx context.Context) ([]Collection, error) {
	return cachedRead(ctx, s.core, s.core.collections, cache.Key("collections", "all"), collectionsTTL,
		func(ctx context.Context) ([]Collection, error) {
			return getOne[[]Collection](ctx, s.core, "/collections", nil)
		})
}

func (s *CollectionsService) Get(ctx context.Context, slug string) (Collection, error) {
	return cachedRead(ctx, s.core, s.core.collection, cache.Key("collection", slug), collectionsTTL,
		func(ctx context.Context) (Collection, error) {
			return getOne[Collection](ctx, s.core, "/collections/"+url.PathEscape(slug), nil)
		})
}
