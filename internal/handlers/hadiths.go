package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/abubakrmuminov/mumin-api-cli/pkg/logging/logging"
	"github.com/abubakrmuminov/mumin-api-cli/pkg/mumin"
)

// HadithHandler serves the /v1 hadith endpoints on top of a HadithService.
type HadithHandler struct {
	Service HadithService
}

func NewHadithHandler(s HadithService) *HadithHandler {
	return &HadithHandler{Service: s}
}

// ListCollections handles GET /v1/collections.
func (h *HadithHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	cols, err := h.Service.ListCollections(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	logServed(r, "collections", start, zap.Int("count", len(cols)))
	writeData(w, cols, nil)
}

// GetCollection handles GET /v1/collections/{slug}.
func (h *HadithHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	slug := chi.URLParam(r, "slug")
	if strings.TrimSpace(slug) == "" {
		writeError(w, r, badRequest{msg: "collection slug is required"})
		return
	}

	col, err := h.Service.GetCollection(r.Context(), slug)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logServed(r, "collection", start, zap.String("slug", slug))
	writeData(w, col, nil)
}

// GetHadith handles GET /v1/hadiths/{id}?lang=.
func (h *HadithHandler) GetHadith(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, r, badRequest{msg: "hadith id must be a positive integer"})
		return
	}
	lang := r.URL.Query().Get("lang")

	hd, err := h.Service.GetHadith(r.Context(), id, lang)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logServed(r, "hadith", start, zap.Int("hadith_id", id), zap.String("lang", lang))
	writeData(w, hd, nil)
}

// RandomHadith handles GET /v1/hadiths/random.
func (h *HadithHandler) RandomHadith(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	hd, err := h.Service.RandomHadith(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logServed(r, "random", start)
	writeData(w, hd, nil)
}

// DailyHadith handles GET /v1/hadiths/daily?lang=.
func (h *HadithHandler) DailyHadith(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	lang := r.URL.Query().Get("lang")

	hd, err := h.Service.DailyHadith(r.Context(), lang)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logServed(r, "daily", start, zap.String("lang", lang))
	writeData(w, hd, nil)
}

// ListHadiths handles GET /v1/hadiths.
func (h *HadithHandler) ListHadiths(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.Service.ListHadiths(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logServed(r, "list", start, zap.Int("count", len(page.Items)))
	writeData(w, page.Items, page.Meta)
}

// SearchHadiths handles GET /v1/hadiths/search?q=.
func (h *HadithHandler) SearchHadiths(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, h.Service.SearchHadiths)
}

// Search handles GET /v1/search?q=.
func (h *HadithHandler) Search(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, h.Service.Search)
}

type searchFunc func(ctx context.Context, text string, q *mumin.Query) (mumin.Page[mumin.Hadith], error)

func (h *HadithHandler) search(w http.ResponseWriter, r *http.Request, fn searchFunc) {
	start := time.Now()
	text := strings.TrimSpace(r.URL.Query().Get("q"))
	if text == "" {
		writeError(w, r, badRequest{msg: "query parameter q is required"})
		return
	}
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := fn(r.Context(), text, q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logServed(r, "search", start, zap.Int("count", len(page.Items)))
	writeData(w, page.Items, page.Meta)
}

// ClearCache handles DELETE /v1/cache.
func (h *HadithHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.ClearCache(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	logging.L(r.Context()).Info("cache cleared")
	w.WriteHeader(http.StatusNoContent)
}

// parseQuery reads the shared filter and paging parameters.
func parseQuery(r *http.Request) (*mumin.Query, error) {
	v := r.URL.Query()
	q := &mumin.Query{
		Lang:       v.Get("lang"),
		Collection: v.Get("collection"),
		Grade:      v.Get("grade"),
	}

	var err error
	if q.Book, err = intParam(v.Get("book"), "book"); err != nil {
		return nil, err
	}
	if q.Page, err = intParam(v.Get("page"), "page"); err != nil {
		return nil, err
	}
	if q.Limit, err = intParam(v.Get("limit"), "limit"); err != nil {
		return nil, err
	}
	return q, nil
}

func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, badRequest{msg: name + " must be a non-negative integer"}
	}
	return n, nil
}

func logServed(r *http.Request, route string, start time.Time, fields ...zap.Field) {
	fields = append(fields,
		zap.String("route", route),
		zap.Duration("total_latency_ms", time.Since(start)),
	)
	logging.L(r.Context()).Info("request served", fields...)
}
