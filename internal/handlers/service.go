package handlers

import (
	"context"

	"github.com/abubakrmuminov/mumin-api-cli/pkg/mumin"
)

// HadithService is what the handlers need from the hadith API client.
type HadithService interface {
	ListCollections(ctx context.Context) ([]mumin.Collection, error)
	GetCollection(ctx context.Context, slug string) (mumin.Collection, error)
	GetHadith(ctx context.Context, id int, lang string) (mumin.Hadith, error)
	RandomHadith(ctx context.Context, q *mumin.Query) (mumin.Hadith, error)
	DailyHadith(ctx context.Context, lang string) (mumin.Hadith, error)
	ListHadiths(ctx context.Context, q *mumin.Query) (mumin.Page[mumin.Hadith], error)
	SearchHadiths(ctx context.Context, text string, q *mumin.Query) (mumin.Page[mumin.Hadith], error)
	Search(ctx context.Context, text string, q *mumin.Query) (mumin.Page[mumin.Hadith], error)
	ClearCache(ctx context.Context) error
}

// ClientService adapts *mumin.Client to HadithService.
type ClientService struct {
	Client *mumin.Client
}

func NewClientService(c *mumin.Client) *ClientService {
	return &ClientService{Client: c}
}

func (s *ClientService) ListCollections(ctx context.Context) ([]mumin.Collection, error) {
	return s.Client.Collections.List(ctx)
}

func (s *ClientService) GetCollection(ctx context.Context, slug string) (mumin.Collection, error) {
	return s.Client.Collections.Get(ctx, slug)
}

func (s *ClientService) GetHadith(ctx context.Context, id int, lang string) (mumin.Hadith, error) {
	return s.Client.Hadiths.Get(ctx, id, lang)
}

func (s *ClientService) RandomHadith(ctx context.Context, q *mumin.Query) (mumin.Hadith, error) {
	return s.Client.Hadiths.Random(ctx, q)
}

func (s *ClientService) DailyHadith(ctx context.Context, lang string) (mumin.Hadith, error) {
	return s.Client.Hadiths.Daily(ctx, lang)
}

func (s *ClientService) ListHadiths(ctx context.Context, q *mumin.Query) (mumin.Page[mumin.Hadith], error) {
	return s.Client.Hadiths.List(ctx, q)
}

func (s *ClientService) SearchHadiths(ctx context.Context, text string, q *mumin.Query) (mumin.Page[mumin.Hadith], error) {
	return s.Client.Hadiths.Search(ctx, text, q)
}

func (s *ClientService) Search(ctx context.Context, text string, q *mumin.Query) (mumin.Page[mumin.Hadith], error) {
	return s.Client.Search.Query(ctx, text, q)
}

func (s *ClientService) ClearCache(ctx context.Context) error {
	return s.Client.ClearCache(ctx)
}

var _ HadithService = (*ClientService)(nil)
