package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/abubakrmuminov/mumin-api-cli/internal/handlers"
	"github.com/abubakrmuminov/mumin-api-cli/internal/metrics"
	"github.com/abubakrmuminov/mumin-api-cli/internal/middleware"
)

// DefaultRequestTimeout bounds a whole gateway request, upstream retries included.
const DefaultRequestTimeout = 30 * time.Second

func SetupRouter(r *chi.Mux, baseLogger *zap.Logger, hadiths *handlers.HadithHandler, timeout time.Duration) {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	r.Use(metrics.Middleware)

	// base middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	r.Use(middleware.LoggingContext(baseLogger))
	r.Use(middleware.Recoverer())
	r.Use(middleware.Timeout(timeout))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/collections", hadiths.ListCollections)
		r.Get("/collections/{slug}", hadiths.GetCollection)

		r.Route("/hadiths", func(r chi.Router) {
			r.Get("/", hadiths.ListHadiths)
			r.Get("/random", hadiths.RandomHadith)
			r.Get("/daily", hadiths.DailyHadith)
			r.Get("/search", hadiths.SearchHadiths)
			r.Get("/{id}", hadiths.GetHadith)
		})

		r.Get("/search", hadiths.Search)
		r.Delete("/cache", hadiths.ClearCache)
	})

	// health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", metrics.Handler())
}
