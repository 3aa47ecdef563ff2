// Package format knows the output formats the image service can render
// through the fm parameter and picks a usable set for each source image.
package format

import (
	"fmt"
	"slices"
	"strings"
)

// Format is one renderable output format.
type Format struct {
	// Name is the canonical name used in profiles and manifests.
	Name string
	// Param is the value sent as fm=.
	Param string
	// Extension is the usual file extension without dot.
	Extension string
	// SupportsAlpha reports whether transparency survives the conversion.
	SupportsAlpha bool
}

// builtin lists every known format in priority order.
var builtin = []Format{
	{Name: "avif", Param: "avif", Extension: "avif", SupportsAlpha: true},
	{Name: "webp", Param: "webp", Extension: "webp", SupportsAlpha: true},
	{Name: "jpeg", Param: "jpg", Extension: "jpg"},
	{Name: "png", Param: "png", Extension: "png", SupportsAlpha: true},
	{Name: "gif", Param: "gif", Extension: "gif", SupportsAlpha: true},
}

// aliases maps alternative spellings to canonical names.
var aliases = map[string]string{
	"jpg": "jpeg",
}

// Canonical lower-cases name and resolves aliases.
func Canonical(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if c, ok := aliases[name]; ok {
		return c
	}
	return name
}

// Registry holds the formats enabled for a build.
type Registry struct {
	formats map[string]Format
}

// NewRegistry enables the named formats, or every built-in format when
// none are named. Unknown names are an error.
func NewRegistry(enabled ...string) (*Registry, error) {
	r := &Registry{formats: make(map[string]Format)}
	if len(enabled) == 0 {
		for _, f := range builtin {
			r.formats[f.Name] = f
		}
		return r, nil
	}

	for _, name := range enabled {
		c := Canonical(name)
		i := slices.IndexFunc(builtin, func(f Format) bool { return f.Name == c })
		if i < 0 {
			return nil, fmt.Errorf("unknown format %q", name)
		}
		r.formats[c] = builtin[i]
	}
	return r, nil
}

// Get returns the format registered under name.
func (r *Registry) Get(name string) (Format, bool) {
	f, ok := r.formats[Canonical(name)]
	return f, ok
}

// Available returns the enabled format names in priority order.
func (r *Registry) Available() []string {
	var result []string
	for _, f := range builtin {
		if _, ok := r.formats[f.Name]; ok {
			result = append(result, f.Name)
		}
	}
	return result
}

// ResolveFormats filters requested formats to the enabled ones, keeping
// their order, and guarantees a fallback: png for images with alpha,
// jpeg otherwise. Alpha images always get png as the last resort.
func (r *Registry) ResolveFormats(requested []string, hasAlpha bool) []Format {
	var resolved []Format
	seen := map[string]bool{}

	for _, name := range requested {
		f, ok := r.Get(name)
		if !ok || seen[f.Name] {
			continue
		}
		if hasAlpha && !f.SupportsAlpha {
			continue
		}
		resolved = append(resolved, f)
		seen[f.Name] = true
	}

	fallback := "jpeg"
	if hasAlpha {
		fallback = "png"
	}
	if f, ok := r.formats[fallback]; ok && !seen[fallback] && (hasAlpha || len(resolved) == 0) {
		resolved = append(resolved, f)
	}
	return resolved
}

func (r *Registry) String() string {
	avail := r.Available()
	if len(avail) == 0 {
		return "no formats enabled"
	}
	return "formats: " + strings.Join(avail, ", ")
}
