package ixurl

import (
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/AnyUserName/ixurl/internal/escape"
)

// Builder produces URLs for one image-service account. Its configuration
// is fixed at construction and a Builder is safe for concurrent use.
type Builder struct {
	domains             []string
	useHTTPS            bool
	signKey             string
	includeLibraryParam bool
	strategy            ShardStrategy
	selector            DomainSelector
	log                 zerolog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithHTTPS chooses between https (the default) and http URLs.
func WithHTTPS(useHTTPS bool) Option {
	return func(b *Builder) { b.useHTTPS = useHTTPS }
}

// WithSignKey enables signing. An empty key disables it.
func WithSignKey(key string) Option {
	return func(b *Builder) { b.signKey = key }
}

// WithLibraryParam controls the ixlib parameter added to every URL
// (enabled by default).
func WithLibraryParam(include bool) Option {
	return func(b *Builder) { b.includeLibraryParam = include }
}

// WithShardStrategy sets how one of several domains is chosen.
func WithShardStrategy(s ShardStrategy) Option {
	return func(b *Builder) { b.strategy = s }
}

// WithDomainSelector installs a custom selector. It takes precedence over
// WithShardStrategy.
func WithDomainSelector(sel DomainSelector) Option {
	return func(b *Builder) { b.selector = sel }
}

// WithLogger sets the logger used for debug traces.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Builder) { b.log = l }
}

// New returns a Builder serving the given domains. At least one non-empty
// domain is required; the slice is copied.
func New(domains []string, opts ...Option) (*Builder, error) {
	if len(domains) == 0 {
		return nil, &ConfigurationError{Reason: "at least one domain is required"}
	}
	for i, d := range domains {
		if strings.TrimSpace(d) == "" {
			return nil, &ConfigurationError{Reason: "domain at index " + strconv.Itoa(i) + " is empty"}
		}
	}

	b := &Builder{
		domains:             slices.Clone(domains),
		useHTTPS:            true,
		includeLibraryParam: true,
		log:                 zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.selector == nil {
		b.selector = b.strategy.Selector()
	}
	return b, nil
}

// Domains returns a copy of the configured domains.
func (b *Builder) Domains() []string { return slices.Clone(b.domains) }

// Scheme returns "https" or "http".
func (b *Builder) Scheme() string {
	if b.useHTTPS {
		return "https"
	}
	return "http"
}

// Signed reports whether URLs carry a signature.
func (b *Builder) Signed() bool { return b.signKey != "" }

// ShardStrategy returns the configured strategy.
func (b *Builder) ShardStrategy() ShardStrategy { return b.strategy }

// BuildURL returns the URL for path rendered with params. params is not
// modified; values must not be pre-escaped.
func (b *Builder) BuildURL(path string, params Params) string {
	p := escape.SanitizePath(path)
	domain := b.domain(p)

	pairs := params.pairs()
	if b.signKey != "" && params.Has(SignatureParam) {
		// The signature is always appended by the builder.
		pairs = slices.DeleteFunc(pairs, func(kv escape.Pair) bool { return kv.Key == SignatureParam })
	}
	if b.includeLibraryParam && !params.Has(LibraryParam) {
		pairs = append(pairs, escape.Pair{Key: LibraryParam, Value: LibraryValue})
	}

	query := escape.Query(pairs)
	if b.signKey != "" {
		query = appendSignature(query, Sign(b.signKey, p, query))
	}

	var sb strings.Builder
	sb.Grow(len(domain) + len(p) + len(query) + 12)
	sb.WriteString(b.Scheme())
	sb.WriteString("://")
	sb.WriteString(domain)
	sb.WriteByte('/')
	sb.WriteString(p)
	if query != "" {
		sb.WriteByte('?')
		sb.WriteString(query)
	}
	return sb.String()
}

func (b *Builder) domain(escapedPath string) string {
	if len(b.domains) == 1 {
		return b.domains[0]
	}
	i := b.selector(escapedPath, len(b.domains))
	if i < 0 || i >= len(b.domains) {
		b.log.Warn().Int("index", i).Int("domains", len(b.domains)).Msg("domain selector out of range, using first domain")
		i = 0
	}
	b.log.Debug().
		Str("path", escapedPath).
		Str("strategy", b.strategy.String()).
		Str("domain", b.domains[i]).
		Msg("selected domain")
	return b.domains[i]
}

func appendSignature(query, sig string) string {
	pair := escape.EncodePair(SignatureParam, sig)
	if query == "" {
		return pair
	}
	return query + "&" + pair
}
