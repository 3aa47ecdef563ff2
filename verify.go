package ixurl

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/AnyUserName/ixurl/internal/hasher"
)

var (
	ErrNoSignKey         = errors.New("builder has no sign key")
	ErrMalformedURL      = errors.New("malformed url")
	ErrUnknownDomain     = errors.New("url domain is not configured")
	ErrUnsigned          = errors.New("url carries no signature")
	ErrSignatureMismatch = errors.New("signature mismatch")
)

// Verify checks that rawURL was signed with this builder's key. The
// signature must be the last query parameter, as BuildURL writes it.
func (b *Builder) Verify(rawURL string) error {
	if b.signKey == "" {
		return ErrNoSignKey
	}

	_, rest, ok := strings.Cut(rawURL, "://")
	if !ok {
		return fmt.Errorf("%w: missing scheme in %q", ErrMalformedURL, rawURL)
	}
	host, pathQuery, ok := strings.Cut(rest, "/")
	if !ok {
		return fmt.Errorf("%w: missing path in %q", ErrMalformedURL, rawURL)
	}
	if !slices.Contains(b.domains, host) {
		return fmt.Errorf("%w: %s", ErrUnknownDomain, host)
	}

	path, query, _ := strings.Cut(pathQuery, "?")
	prefix := SignatureParam + "="

	var sig string
	if strings.HasPrefix(query, prefix) && !strings.Contains(query, "&") {
		sig, query = query[len(prefix):], ""
	} else {
		i := strings.LastIndex(query, "&"+prefix)
		if i < 0 {
			return ErrUnsigned
		}
		sig, query = query[i+1+len(prefix):], query[:i]
	}
	if sig == "" || strings.Contains(sig, "&") {
		return ErrUnsigned
	}

	want := Sign(b.signKey, path, query)
	if subtle.ConstantTimeCompare([]byte(want), []byte(sig)) != 1 {
		return ErrSignatureMismatch
	}
	return nil
}

// Sign returns the signature BuildURL attaches for an escaped path (without
// its leading slash) and an encoded query string.
func Sign(key, escapedPath, query string) string {
	base := "/" + escapedPath
	if query != "" {
		base += "?" + query
	}
	return hasher.Sign(key, base)
}
