package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abubakrmuminov/mumin-api-cli/pkg/mumin"
	"github.com/abubakrmuminov/mumin-api-cli/pkg/transport"
)

type mockHadithService struct {
	hadith      mumin.Hadith
	collection  mumin.Collection
	collections []mumin.Collection
	page        mumin.Page[mumin.Hadith]
	err         error

	calls     map[string]int
	lastID    int
	lastLang  string
	lastSlug  string
	lastText  string
	lastQuery *mumin.Query
}

func newMockService() *mockHadithService {
	return &mockHadithService{calls: map[string]int{}}
}

func (m *mockHadithService) ListCollections(ctx context.Context) ([]mumin.Collection, error) {
	m.calls["collections"]++
	return m.collections, m.err
}

func (m *mockHadithService) GetCollection(ctx context.Context, slug string) (mumin.Collection, error) {
	m.calls["collection"]++
	m.lastSlug = slug
	return m.collection, m.err
}

func (m *mockHadithService) GetHadith(ctx context.Context, id int, lang string) (mumin.Hadith, error) {
	m.calls["hadith"]++
	m.lastID, m.lastLang = id, lang
	return m.hadith, m.err
}

func (m *mockHadithService) RandomHadith(ctx context.Context, q *mumin.Query) (mumin.Hadith, error) {
	m.calls["random"]++
	m.lastQuery = q
	return m.hadith, m.err
}

func (m *mockHadithService) DailyHadith(ctx context.Context, lang string) (mumin.Hadith, error) {
	m.calls["daily"]++
	m.lastLang = lang
	return m.hadith, m.err
}

func (m *mockHadithService) ListHadiths(ctx context.Context, q *mumin.Query) (mumin.Page[mumin.Hadith], error) {
	m.calls["list"]++
	m.lastQuery = q
	return m.page, m.err
}

func (m *mockHadithService) SearchHadiths(ctx context.Context, text string, q *mumin.Query) (mumin.Page[mumin.Hadith], error) {
	m.calls["hadiths.search"]++
	m.lastText, m.lastQuery = text, q
	return m.page, m.err
}

func (m *mockHadithService) Search(ctx context.Context, text string, q *mumin.Query) (mumin.Page[mumin.Hadith], error) {
	m.calls["search"]++
	m.lastText, m.lastQuery = text, q
	return m.page, m.err
}

func (m *mockHadithService) ClearCache(ctx context.Context) error {
	m.calls["clear"]++
	return m.err
}

func newTestRouter(svc HadithService) http.Handler {
	h := NewHadithHandler(svc)
	r := chi.NewRouter()
	r.Get("/v1/collections", h.ListCollections)
	r.Get("/v1/collections/{slug}", h.GetCollection)
	r.Get("/v1/hadiths", h.ListHadiths)
	r.Get("/v1/hadiths/random", h.RandomHadith)
	r.Get("/v1/hadiths/daily", h.DailyHadith)
	r.Get("/v1/hadiths/search", h.SearchHadiths)
	r.Get("/v1/hadiths/{id}", h.GetHadith)
	r.Get("/v1/search", h.Search)
	r.Delete("/v1/cache", h.ClearCache)
	return r
}

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

type testEnvelope struct {
	Data json.RawMessage `json:"data"`
	Meta *mumin.Meta     `json:"meta"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var env testEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorDetail {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Error
}

func TestListCollections(t *testing.T) {
	svc := newMockService()
	svc.collections = []mumin.Collection{{Slug: "bukhari", Name: "Sahih al-Bukhari", TotalHadiths: 7563}}

	rr := serve(t, newTestRouter(svc), http.MethodGet, "/v1/collections")
	require.Equal(t, http.StatusOK, rr.Code)

	var cols []mumin.Collection
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &cols))
	assert.Equal(t, svc.collections, cols)
}

func TestGetCollectionPassesSlug(t *testing.T) {
	svc := newMockService()
	svc.collection = mumin.Collection{Slug: "muslim"}

	rr := serve(t, newTestRouter(svc), http.MethodGet, "/v1/collections/muslim")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "muslim", svc.lastSlug)
}

func TestGetHadith(t *testing.T) {
	svc := newMockService()
	svc.hadith = mumin.Hadith{ID: 42, CollectionID: "bukhari", HadithNumber: "1"}

	rr := serve(t, newTestRouter(svc), http.MethodGet, "/v1/hadiths/42?lang=ru")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 42, svc.lastID)
	assert.Equal(t, "ru", svc.lastLang)

	var hd mumin.Hadith
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &hd))
	assert.Equal(t, 42, hd.ID)
}

func TestGetHadithRejectsBadID(t *testing.T) {
	for _, id := range []string{"abc", "0", "-3"} {
		t.Run(id, func(t *testing.T) {
			svc := newMockService()
			rr := serve(t, newTestRouter(svc), http.MethodGet, "/v1/hadiths/"+id)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "bad-request", decodeError(t, rr).Kind)
			assert.Zero(t, svc.calls["hadith"])
		})
	}
}

func TestStaticRoutesWinOverID(t *testing.T) {
	svc := newMockService()
	router := newTestRouter(svc)

	serve(t, router, http.MethodGet, "/v1/hadiths/random")
	serve(t, router, http.MethodGet, "/v1/hadiths/daily?lang=en")

	assert.Equal(t, 1, svc.calls["random"])
	assert.Equal(t, 1, svc.calls["daily"])
	assert.Equal(t, "en", svc.lastLang)
	assert.Zero(t, svc.calls["hadith"])
}

func TestListHadithsParsesQuery(t *testing.T) {
	svc := newMockService()
	svc.page = mumin.Page[mumin.Hadith]{
		Items: []mumin.Hadith{{ID: 1}, {ID: 2}},
		Meta:  &mumin.Meta{Total: 2, Page: 1, Limit: 20, TotalPages: 1},
	}

	rr := serve(t, newTestRouter(svc), http.MethodGet,
		"/v1/hadiths?lang=en&collection=bukhari&book=3&grade=sahih&page=2&limit=20")
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, &mumin.Query{
		Lang: "en", Collection: "bukhari", Book: 3, Grade: "sahih", Page: 2, Limit: 20,
	}, svc.lastQuery)

	env := decodeEnvelope(t, rr)
	var items []mumin.Hadith
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 2)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 2, env.Meta.Total)
}

func TestListHadithsRejectsBadInts(t *testing.T) {
	for _, q := range []string{"page=two", "limit=-1", "book=x"} {
		t.Run(q, func(t *testing.T) {
			svc := newMockService()
			rr := serve(t, newTestRouter(svc), http.MethodGet, "/v1/hadiths?"+q)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Zero(t, svc.calls["list"])
		})
	}
}

func TestSearchRoutes(t *testing.T) {
	svc := newMockService()
	router := newTestRouter(svc)

	rr := serve(t, router, http.MethodGet, "/v1/search?q=prayer&limit=5")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "prayer", svc.lastText)
	assert.Equal(t, 5, svc.lastQuery.Limit)

	rr = serve(t, router, http.MethodGet, "/v1/hadiths/search?q=%20fasting%20")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "fasting", svc.lastText)

	assert.Equal(t, 1, svc.calls["search"])
	assert.Equal(t, 1, svc.calls["hadiths.search"])
}

func TestSearchRequiresText(t *testing.T) {
	svc := newMockService()
	rr := serve(t, newTestRouter(svc), http.MethodGet, "/v1/search?q=%20")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeError(t, rr).Message, "q is required")
	assert.Zero(t, svc.calls["search"])
}

func TestClearCache(t *testing.T) {
	svc := newMockService()
	rr := serve(t, newTestRouter(svc), http.MethodDelete, "/v1/cache")

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, 1, svc.calls["clear"])
}

func TestUpstreamErrorMapping(t *testing.T) {
	rateLimited := &mumin.Error{
		Kind:       mumin.KindRateLimit,
		Status:     http.StatusTooManyRequests,
		Message:    "slow down",
		RetryAfter: 1500 * time.Millisecond,
	}
	timedOut := transport.NewError(transport.KindNetwork, 0, "request timed out after 10s", context.DeadlineExceeded)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
		wantRetry  string
	}{
		{
			name:       "not found",
			err:        &mumin.Error{Kind: mumin.KindNotFound, Status: 404, Message: "Hadith not found"},
			wantStatus: http.StatusNotFound,
			wantKind:   "not-found",
		},
		{
			name:       "authentication",
			err:        &mumin.Error{Kind: mumin.KindAuthentication, Status: 401, Message: "Invalid API key"},
			wantStatus: http.StatusBadGateway,
			wantKind:   "authentication",
		},
		{
			name:       "rate limit",
			err:        rateLimited,
			wantStatus: http.StatusTooManyRequests,
			wantKind:   "rate-limit",
			wantRetry:  "2",
		},
		{
			name:       "exhausted on rate limit",
			err:        transport.NewError(transport.KindExhaustedRetries, 500, "request failed after 3 attempts: slow down", rateLimited),
			wantStatus: http.StatusTooManyRequests,
			wantKind:   "rate-limit",
			wantRetry:  "2",
		},
		{
			name:       "exhausted on timeout",
			err:        transport.NewError(transport.KindExhaustedRetries, 500, "request failed after 3 attempts", timedOut),
			wantStatus: http.StatusGatewayTimeout,
			wantKind:   "exhausted-retries",
		},
		{
			name:       "exhausted on api error",
			err:        transport.NewError(transport.KindExhaustedRetries, 500, "request failed after 3 attempts", &mumin.Error{Kind: mumin.KindAPI, Status: 503}),
			wantStatus: http.StatusBadGateway,
			wantKind:   "exhausted-retries",
		},
		{
			name:       "network",
			err:        timedOut,
			wantStatus: http.StatusGatewayTimeout,
			wantKind:   "network",
		},
		{
			name:       "configuration",
			err:        transport.ConfigError("apiKey is required"),
			wantStatus: http.StatusInternalServerError,
			wantKind:   "configuration",
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantKind:   "internal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newMockService()
			svc.err = tt.err

			rr := serve(t, newTestRouter(svc), http.MethodGet, "/v1/hadiths/1")
			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantKind, decodeError(t, rr).Kind)
			assert.Equal(t, tt.wantRetry, rr.Header().Get("Retry-After"))
		})
	}
}

func TestErrorBodyUsesUpstreamMessage(t *testing.T) {
	svc := newMockService()
	svc.err = &mumin.Error{Kind: mumin.KindNotFound, Status: 404, Message: "Collection not found"}

	rr := serve(t, newTestRouter(svc), http.MethodGet, "/v1/collections/nope")
	assert.Equal(t, "Collection not found", decodeError(t, rr).Message)
}
