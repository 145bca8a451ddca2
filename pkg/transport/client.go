// Package transport issues requests against the hadith API: it builds the
// URL and headers, enforces a per-attempt timeout, retries with exponential
// backoff, unwraps the {"data": ...} envelope and classifies failures.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/abubakrmuminov/mumin-api-cli/pkg/metrics"
	"github.com/abubakrmuminov/mumin-api-cli/pkg/logging/logging"
)

const (
	maxRequestSize  = 1 * 1024 * 1024 // 1MB JSON body
	maxResponseSize = 8 * 1024 * 1024 // 8MB response body
)

const tracerName = "github.com/abubakrmuminov/mumin-api-cli/pkg/transport"

// Request describes one logical call.
type Request struct {
	Method string
	Path   string
	Params Params
	// Body is JSON-encoded when non-nil.
	Body any
	// Headers override the built-in and configured headers.
	Headers map[string]string
}

// Result is a successful response after envelope unwrapping. Data holds the
// value under "data" when the body was an object with that key, otherwise
// the whole body. Meta is the sibling "meta" value, if any.
type Result struct {
	Status int
	Data   json.RawMessage
	Meta   json.RawMessage
}

// Decode unmarshals Data into v.
func (r *Result) Decode(v any) error {
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("transport: decode response: %w", err)
	}
	return nil
}

// Client is safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
	tracer     trace.Tracer
	headers    http.Header

	// maxBody caps a response body; larger bodies fail without a retry.
	maxBody int64

	// sleep waits between attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a transport with the given configuration.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	// Apply defaults + normalize BaseURL
	cfg = cfg.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: defaultTransport(cfg),
		}
	}

	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logging.OrNop(logger).Named("transport"),
		tracer:     otel.Tracer(tracerName),
		headers:    baseHeaders(cfg),
		maxBody:    maxResponseSize,
		sleep:      sleepCtx,
	}, nil
}

func baseHeaders(cfg Config) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+cfg.APIKey)
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	h.Set("User-Agent", "mumin-go-sdk/"+Version)
	h.Set("X-Mumin-SDK", Version)
	for k, v := range cfg.Headers {
		h.Set(k, v)
	}
	return h
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// Get is Do with GET.
func (c *Client) Get(ctx context.Context, path string, params Params) (*Result, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Params: params})
}

// Post is Do with POST and a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, params Params) (*Result, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Params: params, Body: body})
}

// Do runs req with up to Retries+1 attempts. 401 and 404 fail on the first
// attempt; any other failure is retried after base*2^attempt. When every
// attempt fails the result is a KindExhaustedRetries error wrapping the
// last one. Cancelling ctx stops immediately with a KindNetwork error.
func (c *Client) Do(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	if req.Method == "" {
		req.Method = http.MethodGet
	}

	var body []byte
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, NewError(KindAPI, 0, "encode request body: "+err.Error(), err)
		}
		if len(b) > maxRequestSize {
			return nil, NewError(KindAPI, 0, fmt.Sprintf("request body too large (%d bytes, max %d)", len(b), maxRequestSize), nil)
		}
		body = b
	}

	url := joinURL(c.cfg.BaseURL, req.Path)
	if q := req.Params.Encode(); q != "" {
		url += "?" + q
	}

	ctx, span := c.tracer.Start(ctx, "mumin "+req.Method+" "+normalizePath(req.Path),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", url),
		),
	)
	defer span.End()

	res, attempts, err := c.doWithRetry(ctx, req, url, body)

	outcome := "ok"
	if err != nil {
		kind, _ := KindOf(err)
		outcome = kind.String()
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	} else {
		span.SetAttributes(attribute.Int("http.response.status_code", res.Status))
	}
	span.SetAttributes(attribute.Int("mumin.attempts", attempts))
	metrics.UpstreamDuration.WithLabelValues(req.Method, outcome).Observe(time.Since(start).Seconds())

	if err != nil {
		c.logger.Warn("mumin request failed",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Int("attempts", attempts),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	c.logger.Debug("mumin request completed",
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", res.Status),
		zap.Int("attempts", attempts),
		zap.Duration("duration", time.Since(start)),
	)
	return res, nil
}

func (c *Client) doWithRetry(ctx context.Context, req Request, url string, body []byte) (*Result, int, error) {
	maxAttempts := c.cfg.Retries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr *Error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, attempt, cancelled(err)
		}

		attemptStart := time.Now()
		res, err := c.attempt(ctx, req, url, body)

		if err == nil {
			metrics.UpstreamAttemptsTotal.WithLabelValues("ok").Inc()
			return res, attempt + 1, nil
		}

		metrics.UpstreamAttemptsTotal.WithLabelValues(err.Kind.String()).Inc()
		c.logger.Debug("mumin upstream attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxAttempts),
			zap.Int("status", err.Status),
			zap.Stringer("kind", err.Kind),
			zap.Duration("duration", time.Since(attemptStart)),
			zap.Error(err),
		)

		// The caller gave up: no more attempts.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, attempt + 1, cancelled(ctxErr)
		}

		if !err.Kind.retryable() || err.final {
			return nil, attempt + 1, err
		}
		lastErr = err

		// No more attempts left
		if attempt == maxAttempts-1 {
			break
		}

		wait := computeBackoff(c.cfg.RetryDelay, c.cfg.MaxBackoff, attempt)
		if c.cfg.HonorRetryAfter && err.Kind == KindRateLimit && err.RetryAfter > wait {
			c.logger.Info("honoring Retry-After hint",
				zap.Duration("wait", err.RetryAfter),
			)
			wait = err.RetryAfter
		}

		c.logger.Debug("backing off before retry",
			zap.Duration("backoff", wait),
			zap.Int("next_attempt", attempt+2),
		)
		metrics.UpstreamRetriesTotal.Inc()

		if err := c.sleep(ctx, wait); err != nil {
			return nil, attempt + 1, cancelled(err)
		}
	}

	return nil, maxAttempts, exhausted(maxAttempts, lastErr)
}

// attempt performs a single HTTP exchange under its own timeout.
func (c *Client) attempt(parent context.Context, req Request, url string, body []byte) (*Result, *Error) {
	ctx, cancel := context.WithTimeout(parent, c.cfg.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, reader)
	if err != nil {
		return nil, NewError(KindNetwork, 0, "build HTTP request: "+err.Error(), err)
	}
	for k, v := range c.headers {
		httpReq.Header[k] = v
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && parent.Err() == nil {
			return nil, NewError(KindNetwork, 0, fmt.Sprintf("request timed out after %s", c.cfg.Timeout), err)
		}
		return nil, NewError(KindNetwork, 0, err.Error(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, NewError(KindNetwork, resp.StatusCode, "read response body: "+err.Error(), err)
	}
	if int64(len(raw)) > c.maxBody {
		return nil, &Error{
			Kind:    KindAPI,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("response too large: body exceeds %d bytes", c.maxBody),
			final:   true,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errorFromResponse(resp, raw)
	}

	return unwrap(resp.StatusCode, raw)
}

// unwrap applies the envelope rule to a 2xx body.
func unwrap(status int, raw []byte) (*Result, *Error) {
	trimmed := bytes.TrimSpace(raw)
	if status == http.StatusNoContent || len(trimmed) == 0 {
		return &Result{Status: status, Data: json.RawMessage("{}")}, nil
	}

	if !json.Valid(trimmed) {
		return nil, &Error{
			Kind:    KindAPI,
			Status:  status,
			Message: "invalid JSON in response body",
		}
	}

	res := &Result{Status: status, Data: json.RawMessage(trimmed)}
	if trimmed[0] != '{' {
		return res, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return res, nil
	}
	if data, ok := envelope["data"]; ok {
		res.Data = data
		if meta, ok := envelope["meta"]; ok && !isJSONNull(meta) {
			res.Meta = meta
		}
	}
	return res, nil
}

// errorFromResponse classifies a non-2xx response.
func errorFromResponse(resp *http.Response, raw []byte) *Error {
	e := &Error{
		Kind:   classifyStatus(resp.StatusCode),
		Status: resp.StatusCode,
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		// not a JSON object: fall back to the status text
		e.Message = http.StatusText(resp.StatusCode)
		if e.Message == "" {
			e.Message = "Unknown error"
		}
	} else {
		e.Message = messageFrom(fields)
		e.Detail = json.RawMessage(bytes.TrimSpace(raw))
	}

	if e.Kind == KindRateLimit {
		e.ResetAt = parseResetTime(resp.Header, fields)
		e.RetryAfter = parseRetryAfter(resp.Header)
		if e.RetryAfter == 0 && !e.ResetAt.IsZero() {
			e.RetryAfter = capHint(time.Until(e.ResetAt))
		}
	}
	return e
}

// messageFrom picks "message", then "error" (a string or an object with a
// message), then a fixed fallback.
func messageFrom(fields map[string]json.RawMessage) string {
	var s string
	if raw, ok := fields["message"]; ok {
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	if raw, ok := fields["error"]; ok {
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
	}
	return "Unknown error"
}

func cancelled(err error) *Error {
	return NewError(KindNetwork, 0, "request cancelled: "+err.Error(), err)
}

func isJSONNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// normalizePath replaces numeric segments so span names stay low-cardinality.
func normalizePath(p string) string {
	segs := strings.Split(strings.Trim(p, "/"), "/")
	for i, s := range segs {
		if s != "" && strings.Trim(s, "0123456789") == "" {
			segs[i] = "{id}"
		}
	}
	return "/" + strings.Join(segs, "/")
}
