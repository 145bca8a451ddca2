package transport

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// Params are query parameters. Nil values, nil pointers and empty strings
// are dropped before encoding; everything else is formatted with fmt
// after dereferencing pointers.
type Params map[string]any

// Encode renders p as a query string sorted by key.
func (p Params) Encode() string {
	return p.Values().Encode()
}

// Values returns the filtered parameters.
func (p Params) Values() url.Values {
	v := url.Values{}
	for k, raw := range p {
		s, ok := formatParam(raw)
		if !ok {
			continue
		}
		v.Set(k, s)
	}
	return v
}

// Strings returns the filtered parameters as a flat map, e.g. for building
// cache keys.
func (p Params) Strings() map[string]string {
	out := make(map[string]string, len(p))
	for k, raw := range p {
		if s, ok := formatParam(raw); ok {
			out[k] = s
		}
	}
	return out
}

func formatParam(raw any) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	case fmt.Stringer:
		if isNilPointer(raw) {
			return "", false
		}
		s := v.String()
		return s, s != ""
	}

	rv := reflect.ValueOf(raw)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	s := fmt.Sprint(rv.Interface())
	return s, s != ""
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// joinURL concatenates base and path with exactly one slash between them.
func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
