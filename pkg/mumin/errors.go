package mumin

import "github.com/abubakrmuminov/mumin-api-cli/pkg/transport"

// Error and Kind are re-exported so callers only need this package.
type (
	Error = transport.Error
	Kind  = transport.Kind
)

const (
	KindAPI              = transport.KindAPI
	KindAuthentication   = transport.KindAuthentication
	KindNotFound         = transport.KindNotFound
	KindRateLimit        = transport.KindRateLimit
	KindNetwork          = transport.KindNetwork
	KindExhaustedRetries = transport.KindExhaustedRetries
	KindConfiguration    = transport.KindConfiguration
)

var (
	ErrAuthentication   = transport.ErrAuthentication
	ErrNotFound         = transport.ErrNotFound
	ErrRateLimited      = transport.ErrRateLimited
	ErrAPI              = transport.ErrAPI
	ErrNetwork          = transport.ErrNetwork
	ErrExhaustedRetries = transport.ErrExhaustedRetries
	ErrConfiguration    = transport.ErrConfiguration
)

func KindOf(err error) (Kind, bool)   { return transport.KindOf(err) }
func IsNotFound(err error) bool       { return transport.IsNotFound(err) }
func IsAuthentication(err error) bool { return transport.IsAuthentication(err) }
func IsRateLimit(err error) bool      { return transport.IsRateLimit(err) }
