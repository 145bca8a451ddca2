package mumin

import "context"

// SearchService is the standalone search accessor.
type SearchService struct {
	core *core
}

// Query searches hadiths by text. Results are cached for five minutes.
func (s *SearchService) Query(ctx context.Context, text string, q *Query) (Page[Hadith], error) {
	return search(ctx, s.core, text, q)
}
