package filters

import (
	"net/url"
	"slices"
	"sort"
	"strings"
)

// Recognized parameter keys.
const (
	ParamTag          = "tag"
	ParamCollection   = "collection"
	ParamProductType  = "filter.p.product_type"
	ParamOptionPrefix = "option:"
	ParamMinPrice     = "minPrice"
	ParamMaxPrice     = "maxPrice"
	ParamSort         = "sort"
	ParamQuery        = "q"
)

// Param is one key/value pair of a query string.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered multi-map of request parameters. Unlike url.Values it keeps
// the arrival order across keys, which fixes the order of option dimensions.
//
// Methods never modify the receiver; mutating methods return a new Params.
type Params []Param

// ParseQuery parses a raw query string, keeping pair order. A leading '?' is
// ignored. Pairs that fail to unescape, or have an empty key, are skipped.
func ParseQuery(raw string) Params {
	raw = strings.TrimPrefix(raw, "?")
	var out Params
	for part := range strings.SplitSeq(raw, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(k)
		if err != nil || key == "" {
			continue
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			continue
		}
		out = append(out, Param{Key: key, Value: value})
	}
	return out
}

// FromValues converts url.Values. Keys are sorted since url.Values carries no key order.
func FromValues(values url.Values) Params {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out Params
	for _, k := range keys {
		for _, v := range values[k] {
			out = append(out, Param{Key: k, Value: v})
		}
	}
	return out
}

// Get returns the first value of key, or "".
func (p Params) Get(key string) string {
	v, _ := p.Lookup(key)
	return v
}

// Lookup returns the first value of key and whether key is present.
func (p Params) Lookup(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// GetAll returns every value of key in order.
func (p Params) GetAll(key string) []string {
	var out []string
	for _, kv := range p {
		if kv.Key == key {
			out = append(out, kv.Value)
		}
	}
	return out
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p.Lookup(key)
	return ok
}

// Contains reports whether the exact pair is present.
func (p Params) Contains(key, value string) bool {
	return slices.Contains(p, Param{Key: key, Value: value})
}

// Clone returns a copy of p.
func (p Params) Clone() Params {
	return slices.Clone(p)
}

// Add returns a copy of p with the pair appended.
func (p Params) Add(key, value string) Params {
	out := make(Params, len(p), len(p)+1)
	copy(out, p)
	return append(out, Param{Key: key, Value: value})
}

// Set returns a copy of p where key has the single value. The first occurrence
// keeps its position; a new key is appended.
func (p Params) Set(key, value string) Params {
	out := make(Params, 0, len(p)+1)
	found := false
	for _, kv := range p {
		if kv.Key != key {
			out = append(out, kv)
			continue
		}
		if !found {
			out = append(out, Param{Key: key, Value: value})
			found = true
		}
	}
	if !found {
		out = append(out, Param{Key: key, Value: value})
	}
	return out
}

// Del returns a copy of p without key.
func (p Params) Del(key string) Params {
	return p.filter(func(kv Param) bool { return kv.Key != key })
}

// Remove returns a copy of p without the exact pair.
func (p Params) Remove(key, value string) Params {
	return p.filter(func(kv Param) bool { return kv.Key != key || kv.Value != value })
}

func (p Params) filter(keep func(Param) bool) Params {
	out := make(Params, 0, len(p))
	for _, kv := range p {
		if keep(kv) {
			out = append(out, kv)
		}
	}
	return out
}

// Encode renders p as a query string in order.
func (p Params) Encode() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.Value))
	}
	return b.String()
}

// Href joins path and the encoded params into a link.
func Href(path string, p Params) string {
	if len(p) == 0 {
		return path
	}
	return path + "?" + p.Encode()
}
