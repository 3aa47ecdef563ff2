// Package escape produces the exact path and query encoding the image
// service expects. Signatures are computed over this output, so a single
// differing byte breaks verification on the server.
package escape

import (
	"encoding/base64"
	"net/url"
	"strings"
)

// Base64Suffix marks parameters whose values are sent Base64 encoded.
const Base64Suffix = "64"

// url.QueryEscape leaves only [A-Za-z0-9-_.~] bare. The service's reference
// encoder also leaves !*() bare and uses %20 for spaces. QueryEscape writes a
// literal '+' as %2B, so every '+' in its output stands for a space.
var serviceReplacer = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// URLEncode percent-encodes s for use as a path segment, parameter key or
// parameter value. ':', '?', '#', '/' and '+' are always escaped.
func URLEncode(s string) string {
	return serviceReplacer.Replace(url.QueryEscape(s))
}

// Base64Encode returns the unpadded URL-safe Base64 form of s.
func Base64Encode(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

// IsBase64Key reports whether values of key are sent Base64 encoded.
func IsBase64Key(key string) bool {
	return strings.HasSuffix(key, Base64Suffix)
}

// IsProxyPath reports whether p is itself an absolute http(s) URL, and
// whether that URL is already percent-encoded.
func IsProxyPath(p string) (proxy, encoded bool) {
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return true, false
	}
	lower := strings.ToLower(p)
	if strings.HasPrefix(lower, "http%3a%2f%2f") || strings.HasPrefix(lower, "https%3a%2f%2f") {
		return true, true
	}
	return false, false
}

// SanitizePath strips one leading and one trailing slash and escapes the
// rest. Proxy paths are escaped as a single value unless they already are;
// ordinary paths are escaped per segment so '/' survives.
func SanitizePath(p string) string {
	p = strings.TrimPrefix(p, "/")
	p = strings.TrimSuffix(p, "/")

	if proxy, encoded := IsProxyPath(p); proxy {
		if encoded {
			return p
		}
		return URLEncode(p)
	}

	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = URLEncode(s)
	}
	return strings.Join(segments, "/")
}

// Pair is one query parameter before encoding.
type Pair struct {
	Key   string
	Value string
}

// EncodePair renders key=value with the key escaped and the value either
// escaped or, for Base64 keys, Base64 encoded.
func EncodePair(key, value string) string {
	var v string
	if IsBase64Key(key) {
		v = Base64Encode(value)
	} else {
		v = URLEncode(value)
	}
	return URLEncode(key) + "=" + v
}

// Query joins the encoded pairs with '&' in the order given.
func Query(pairs []Pair) string {
	if len(pairs) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(EncodePair(p.Key, p.Value))
	}
	return b.String()
}
