package cache

import (
	"net/url"
	"strings"
)

const (
	// DefaultPart stands for an omitted optional component, e.g. no language.
	DefaultPart = "default"
	// NoParams stands for an empty option set.
	NoParams = "-"
)

// Key joins resource and parts with ":". Parts are query-escaped so a
// component containing ":" cannot collide with another key. Parts are used
// as given: an empty part stays empty, so it never matches a real value.
// Wrap optional parts in OptionalPart.
//
//	Key("hadith", "42", OptionalPart(""))   // hadith:42:default
//	Key("collection", "bukhari")
func Key(resource string, parts ...string) string {
	var b strings.Builder
	b.WriteString(resource)
	for _, p := range parts {
		b.WriteByte(':')
		b.WriteString(url.QueryEscape(p))
	}
	return b.String()
}

// OptionalPart returns p, or DefaultPart when p is empty, so "not given"
// and "default" share one key.
func OptionalPart(p string) string {
	if p == "" {
		return DefaultPart
	}
	return p
}

// KeyWithParams is Key followed by a normalized rendering of params: empty
// values are dropped and the rest are sorted by name, so two option sets
// that differ only in order map to the same key.
func KeyWithParams(resource string, params map[string]string, parts ...string) string {
	return Key(resource, parts...) + ":" + NormalizeParams(params)
}

// NormalizeParams renders params as a sorted query string, or NoParams
// when nothing is left after dropping empty values.
func NormalizeParams(params map[string]string) string {
	v := url.Values{}
	for k, val := range params {
		if val == "" {
			continue
		}
		v.Set(k, val)
	}
	if len(v) == 0 {
		return NoParams
	}
	return v.Encode()
}
