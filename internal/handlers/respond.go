package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/abubakrmuminov/mumin-api-cli/pkg/logging/logging"
	"github.com/abubakrmuminov/mumin-api-cli/pkg/mumin"
)

type envelope struct {
	Data any         `json:"data"`
	Meta *mumin.Meta `json:"meta,omitempty"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// badRequest is a client mistake caught before calling upstream.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

// writeJSON is a small helper to send JSON responses consistently.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, data any, meta *mumin.Meta) {
	writeJSON(w, http.StatusOK, envelope{Data: data, Meta: meta})
}

// writeError maps an error to an HTTP status and the JSON error body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.L(r.Context())

	status, kind := statusFor(err)
	msg := err.Error()
	var merr *mumin.Error
	if errors.As(err, &merr) {
		msg = merr.Message
	}

	if status == http.StatusTooManyRequests {
		if hint := retryAfterSeconds(err); hint > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(hint))
		}
	}

	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("error_kind", kind),
		zap.Error(err),
	}
	if status >= 500 {
		logger.Error("request failed", fields...)
	} else {
		logger.Info("request rejected", fields...)
	}

	writeJSON(w, status, errorBody{Error: errorDetail{Kind: kind, Message: msg}})
}

// statusFor maps an error to the gateway's response status. Upstream
// failures that are not the caller's fault surface as 502/504.
func statusFor(err error) (int, string) {
	var br badRequest
	if errors.As(err, &br) {
		return http.StatusBadRequest, "bad-request"
	}

	kind, ok := mumin.KindOf(err)
	if !ok {
		return http.StatusInternalServerError, "internal"
	}

	switch kind {
	case mumin.KindNotFound:
		return http.StatusNotFound, kind.String()
	case mumin.KindRateLimit:
		return http.StatusTooManyRequests, kind.String()
	case mumin.KindAuthentication:
		return http.StatusBadGateway, kind.String()
	case mumin.KindNetwork:
		return http.StatusGatewayTimeout, kind.String()
	case mumin.KindExhaustedRetries:
		if mumin.IsRateLimit(err) {
			return http.StatusTooManyRequests, mumin.KindRateLimit.String()
		}
		if errors.Is(err, mumin.ErrNetwork) {
			return http.StatusGatewayTimeout, kind.String()
		}
		return http.StatusBadGateway, kind.String()
	case mumin.KindConfiguration:
		return http.StatusInternalServerError, kind.String()
	default:
		return http.StatusBadGateway, kind.String()
	}
}

// retryAfterSeconds finds the first rate-limit hint in err's chain.
func retryAfterSeconds(err error) int {
	var merr *mumin.Error
	for errors.As(err, &merr) {
		if merr.Kind == mumin.KindRateLimit && merr.RetryAfter > 0 {
			return int(math.Ceil(merr.RetryAfter.Seconds()))
		}
		err = merr.Unwrap()
	}
	return 0
}
