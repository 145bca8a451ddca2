package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/abubakrmuminov/mumin-api-cli/internal/config"
	"github.com/abubakrmuminov/mumin-api-cli/internal/handlers"
	"github.com/abubakrmuminov/mumin-api-cli/internal/httpserver"
	"github.com/abubakrmuminov/mumin-api-cli/internal/metrics"
	"github.com/abubakrmuminov/mumin-api-cli/pkg/cache"
	"github.com/abubakrmuminov/mumin-api-cli/pkg/logging/logging"
	"github.com/abubakrmuminov/mumin-api-cli/pkg/mumin"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("gateway exited with error: %v", err)
	}
}

func run() error {
	// ----- Config -----
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// ----- Logger -----
	logger := logging.NewLoggerWith(logging.Options{Env: cfg.Env, Level: cfg.LogLevel})
	defer logger.Sync()

	// ----- Metrics -----
	metrics.Register()

	backend := strings.ToLower(cfg.Cache.Backend)
	logger.Info("loaded config",
		zap.String("port", cfg.Port),
		zap.String("base_url", cfg.API.BaseURL),
		zap.Int("retries", cfg.API.Retries),
		zap.Duration("timeout", cfg.API.Timeout),
		zap.String("cache_backend", backend),
		zap.String("cache_codec", cfg.Cache.Codec),
	)

	// ----- Redis client (only if needed) -----
	var redisClient *redis.Client
	if backend == cache.BackendRedis {
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.Cache.RedisAddr,
		})
		defer redisClient.Close()

		// Fail fast if Redis is misconfigured
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Error("redis connection failed", zap.Error(err))
			return err
		}
		logger.Info("redis connection established",
			zap.String("addr", cfg.Cache.RedisAddr),
		)
	}

	// ----- Cache -----
	store, err := cache.New(cache.Config{
		Backend:       backend,
		Prefix:        cfg.Cache.Prefix,
		SweepInterval: cfg.Cache.Sweep,
	}, redisClient)
	if err != nil {
		return err
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	// ----- Hadith API client -----
	opts := []mumin.Option{
		mumin.WithBaseURL(cfg.API.BaseURL),
		mumin.WithTimeout(cfg.API.Timeout),
		mumin.WithRetries(cfg.API.Retries),
		mumin.WithRetryDelay(cfg.API.RetryDelay),
		mumin.WithCodec(strings.ToLower(cfg.Cache.Codec)),
		mumin.WithCacheTTL(cfg.Cache.TTL),
		mumin.WithLogger(logger),
	}
	if backend == cache.BackendNone {
		opts = append(opts, mumin.WithoutCache())
	} else {
		opts = append(opts, mumin.WithCache(store), mumin.WithCacheBackendName(backend))
	}
	if cfg.API.HonorRetryAfter {
		opts = append(opts, mumin.WithHonorRetryAfter())
	}

	client, err := mumin.New(cfg.API.Key, opts...)
	if err != nil {
		return err
	}
	defer client.Close()

	// ----- Router + middleware -----
	hadithHandler := handlers.NewHadithHandler(handlers.NewClientService(client))

	r := chi.NewRouter()
	httpserver.SetupRouter(r, logger, hadithHandler, requestTimeout(cfg))

	// ----- HTTP server -----
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      requestTimeout(cfg) + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting gateway",
		zap.String("addr", srv.Addr),
		zap.String("cache_backend", backend),
	)

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			serveErr <- err
		}
	}()

	// ----- Graceful shutdown -----
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutdown signal received")
	case err := <-serveErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	logger.Info("server shutdown complete")
	return nil
}

// requestTimeout leaves room for every attempt plus the backoff between them.
func requestTimeout(cfg *config.Config) time.Duration {
	retries := min(cfg.API.Retries, 10)
	d := time.Duration(retries+1)*cfg.API.Timeout + (1<<retries)*cfg.API.RetryDelay
	if d < httpserver.DefaultRequestTimeout {
		return httpserver.DefaultRequestTimeout
	}
	return d
}
