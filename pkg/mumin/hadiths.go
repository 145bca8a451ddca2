package mumin

import (
	"context"
	"strconv"

	"github.com/abubakrmuminov/mumin-api-cli/pkg/cache"
)

// HadithsService reads hadiths.
type HadithsService struct {
	core *core
}

// Get returns one hadith, optionally in the given language. Cached for the
// client's default TTL.
func (s *HadithsService) Get(ctx context.Context, id int, lang string) (Hadith, error) {
	key := cache.Key("hadith", strconv.Itoa(id), cache.OptionalPart(lang))
	return cachedRead(ctx, s.core, s.core.hadith, key, s.core.defaultTTL, func(ctx context.Context) (Hadith, error) {
		return getOne[Hadith](ctx, s.core, "/hadiths/"+strconv.Itoa(id), langParams(lang))
	})
}

// Random returns a random hadith. It is never cached.
func (s *HadithsService) Random(ctx context.Context, q *Query) (Hadith, error) {
	return getOne[Hadith](ctx, s.core, "/hadiths/random", q.params())
}

// Daily returns the hadith of the day. Cached for an hour.
func (s *HadithsService) Daily(ctx context.Context, lang string) (Hadith, error) {
	key := cache.Key("daily", cache.OptionalPart(lang))
	return cachedRead(ctx, s.core, s.core.hadith, key, dailyTTL, func(ctx context.Context) (Hadith, error) {
		return getOne[Hadith](ctx, s.core, "/hadiths/daily", langParams(lang))
	})
}

// List returns one page of hadiths matching q.
func (s *HadithsService) List(ctx context.Context, q *Query) (Page[Hadith], error) {
	params := q.params()
	key := cache.KeyWithParams("hadiths", params.Strings())
	return cachedRead(ctx, s.core, s.core.page, key, listTTL, func(ctx context.Context) (Page[Hadith], error) {
		return getPage[Hadith](ctx, s.core, "/hadiths", params)
	})
}

// Search runs a full-text search. It shares its cache entries with
// SearchService.Query.
func (s *HadithsService) Search(ctx context.Context, text string, q *Query) (Page[Hadith], error) {
	return search(ctx, s.core, text, q)
}

func search(ctx context.Context, c *core, text string, q *Query) (Page[Hadith], error) {
	params := q.params()
	key := cache.KeyWithParams("search", params.Strings(), text)

	params["q"] = text
	return cachedRead(ctx, c, c.page, key, searchTTL, func(ctx context.Context) (Page[Hadith], error) {
		return getPage[Hadith](ctx, c, "/hadiths/search", params)
	})
}
