package ixurl

import (
	"slices"
	"sort"

	"github.com/AnyUserName/ixurl/internal/escape"
)

// Params holds rendering parameters keyed by name. Keys are unique and
// keep the order in which they were first set; that order is the order
// they appear in the query string. The zero value is an empty set.
//
// Params shares its storage when copied. Use Clone before mutating a
// value you did not create.
type Params struct {
	keys   []string
	values map[string]string
}

// NewParams builds Params from alternating key/value arguments. A
// trailing key without a value is set to the empty string.
func NewParams(kv ...string) Params {
	var p Params
	for i := 0; i < len(kv); i += 2 {
		v := ""
		if i+1 < len(kv) {
			v = kv[i+1]
		}
		p.Set(kv[i], v)
	}
	return p
}

// ParamsFromMap copies m into Params with keys in sorted order, so the
// same map always serializes the same way.
func ParamsFromMap(m map[string]string) Params {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var p Params
	for _, k := range keys {
		p.Set(k, m[k])
	}
	return p
}

// Set assigns value to key. An existing key keeps its position.
func (p *Params) Set(key, value string) {
	if p.values == nil {
		p.values = make(map[string]string)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Del removes key if present.
func (p *Params) Del(key string) {
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	if i := slices.Index(p.keys, key); i >= 0 {
		p.keys = slices.Delete(p.keys, i, i+1)
	}
}

// Get returns the value for key and whether it was set.
func (p Params) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Has reports whether key is set.
func (p Params) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// Len returns the number of parameters.
func (p Params) Len() int { return len(p.keys) }

// Keys returns the parameter names in query order.
func (p Params) Keys() []string { return slices.Clone(p.keys) }

// Clone returns an independent copy.
func (p Params) Clone() Params {
	c := Params{keys: slices.Clone(p.keys)}
	if p.values != nil {
		c.values = make(map[string]string, len(p.values))
		for k, v := range p.values {
			c.values[k] = v
		}
	}
	return c
}

func (p Params) pairs() []escape.Pair {
	out := make([]escape.Pair, 0, len(p.keys)+2)
	for _, k := range p.keys {
		out = append(out, escape.Pair{Key: k, Value: p.values[k]})
	}
	return out
}
