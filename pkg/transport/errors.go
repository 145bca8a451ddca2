package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Sentinels for errors.Is. Every *Error matches the sentinel of its Kind.
//
//	h, err := client.Hadiths.Get(ctx, 42, "en")
//	if errors.Is(err, transport.ErrNotFound) {
//	    // no such hadith
//	}
var (
	ErrAuthentication   = errors.New("authentication failed")
	ErrNotFound         = errors.New("resource not found")
	ErrRateLimited      = errors.New("rate limited")
	ErrAPI              = errors.New("api error")
	ErrNetwork          = errors.New("network error")
	ErrExhaustedRetries = errors.New("retries exhausted")
	ErrConfiguration    = errors.New("invalid configuration")
)

// Kind is the closed set of failure classes.
type Kind int

const (
	KindAPI Kind = iota
	KindAuthentication
	KindNotFound
	KindRateLimit
	KindNetwork
	KindExhaustedRetries
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindNotFound:
		return "not-found"
	case KindRateLimit:
		return "rate-limit"
	case KindNetwork:
		return "network"
	case KindExhaustedRetries:
		return "exhausted-retries"
	case KindConfiguration:
		return "configuration"
	default:
		return "api"
	}
}

// MarshalText lets Kind appear by name in JSON and logs.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k Kind) sentinel() error {
	switch k {
	case KindAuthentication:
		return ErrAuthentication
	case KindNotFound:
		return ErrNotFound
	case KindRateLimit:
		return ErrRateLimited
	case KindNetwork:
		return ErrNetwork
	case KindExhaustedRetries:
		return ErrExhaustedRetries
	case KindConfiguration:
		return ErrConfiguration
	default:
		return ErrAPI
	}
}

// retryable reports whether an attempt that failed with this kind may be
// followed by another one.
func (k Kind) retryable() bool {
	switch k {
	case KindAuthentication, KindNotFound, KindConfiguration, KindExhaustedRetries:
		return false
	default:
		return true
	}
}

// Error is a classified failure. Status is 0 when no HTTP response was
// received.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	// Detail is the raw JSON error body, when there was one.
	Detail json.RawMessage
	// RetryAfter is the server's rate-limit hint, zero when absent.
	RetryAfter time.Duration
	// ResetAt is the absolute reset time reported for a rate limit, if any.
	ResetAt time.Time

	err error
	// final stops the retry loop for a kind that is otherwise retried.
	final bool
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("mumin: %s error (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("mumin: %s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.err }

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// NewError builds a classified error wrapping cause (which may be nil).
func NewError(kind Kind, status int, message string, cause error) *Error {
	return &Error{Kind: kind, Status: status, Message: message, err: cause}
}

// ConfigError reports invalid client configuration.
func ConfigError(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

// classifyStatus maps a non-2xx HTTP status to its kind.
func classifyStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized:
		return KindAuthentication
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusTooManyRequests:
		return KindRateLimit
	default:
		return KindAPI
	}
}

// exhausted wraps the last attempt's error once the retry budget is spent.
func exhausted(attempts int, last error) *Error {
	msg := "unknown error"
	if last != nil {
		msg = last.Error()
		var e *Error
		if errors.As(last, &e) {
			msg = e.Message
		}
	}
	return &Error{
		Kind:    KindExhaustedRetries,
		Status:  http.StatusInternalServerError,
		Message: fmt.Sprintf("request failed after %d attempts: %s", attempts, msg),
		err:     last,
	}
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func IsNotFound(err error) bool       { return errors.Is(err, ErrNotFound) }
func IsAuthentication(err error) bool { return errors.Is(err, ErrAuthentication) }
func IsRateLimit(err error) bool      { return errors.Is(err, ErrRateLimited) }
