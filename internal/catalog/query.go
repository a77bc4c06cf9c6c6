package catalog

import (
	"strings"
	"unicode"
)

// Provider query fields.
const (
	FieldTag            = "tag"
	FieldCollection     = "collection"
	FieldProductType    = "product_type"
	FieldVariantOptions = "variant_options."
)

// NormalizeOptionName turns an option dimension name into its provider field suffix:
// trimmed, lowercased, whitespace runs collapsed to a single underscore.
func NormalizeOptionName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

// OptionField returns the provider field for an option dimension, e.g. "Ring Size"
// becomes "variant_options.ring_size".
func OptionField(name string) string {
	return FieldVariantOptions + NormalizeOptionName(name)
}

// Predicate reports whether a product satisfies a compiled query.
type Predicate func(p *Product) bool

type term struct {
	field string
	value string
	text  bool
}

// CompileQuery compiles a provider query string into a predicate.
//
// The grammar is the one produced by the filters package: clauses joined with
// " AND ", each clause either a free text term, a single field:"literal" term or a
// parenthesized group of terms joined with " OR ". Field comparisons are
// case-insensitive. An empty query matches every product.
func CompileQuery(query string) Predicate {
	var groups [][]term
	for _, clause := range splitTopLevel(strings.TrimSpace(query), " AND ") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		if len(clause) > 1 && clause[0] == '(' && clause[len(clause)-1] == ')' {
			var alts []term
			for _, part := range splitTopLevel(clause[1:len(clause)-1], " OR ") {
				alts = append(alts, parseTerm(strings.TrimSpace(part)))
			}
			groups = append(groups, alts)
			continue
		}
		groups = append(groups, []term{parseTerm(clause)})
	}

	return func(p *Product) bool {
		if p == nil {
			return false
		}
		for _, alts := range groups {
			matched := false
			for _, t := range alts {
				if t.match(p) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
		return true
	}
}

// EvaluateQuery returns the products matching query, in their original order.
func EvaluateQuery(query string, products []Product) []Product {
	pred := CompileQuery(query)
	out := make([]Product, 0, len(products))
	for i := range products {
		if pred(&products[i]) {
			out = append(out, products[i])
		}
	}
	return out
}

func parseTerm(s string) term {
	idx := strings.Index(s, ":")
	if idx <= 0 {
		return term{value: s, text: true}
	}
	field := s[:idx]
	if !knownField(field) {
		return term{value: s, text: true}
	}
	return term{field: field, value: unquote(strings.TrimSpace(s[idx+1:]))}
}

func knownField(field string) bool {
	switch field {
	case FieldTag, FieldCollection, FieldProductType:
		return true
	}
	return strings.HasPrefix(field, FieldVariantOptions) && len(field) > len(FieldVariantOptions)
}

func (t term) match(p *Product) bool {
	if t.text {
		return matchText(p, t.value)
	}
	switch t.field {
	case FieldTag:
		return p.HasTag(t.value)
	case FieldCollection:
		for _, c := range p.Collections {
			if strings.EqualFold(c, t.value) {
				return true
			}
		}
		return false
	case FieldProductType:
		return strings.EqualFold(p.ProductType, t.value)
	}
	name := strings.TrimPrefix(t.field, FieldVariantOptions)
	for _, v := range p.Variants {
		for _, opt := range v.SelectedOptions {
			if NormalizeOptionName(opt.Name) == name && strings.EqualFold(opt.Value, t.value) {
				return true
			}
		}
	}
	return false
}

// matchText requires every word of text to appear in the product's title, handle,
// product type or tags.
func matchText(p *Product, text string) bool {
	haystack := strings.ToLower(strings.Join(append([]string{p.Title, p.Handle, p.ProductType}, p.Tags...), " "))
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if !strings.Contains(haystack, strings.Trim(word, `"`)) {
			return false
		}
	}
	return true
}

// splitTopLevel splits s on sep, ignoring separators inside quoted literals or parentheses.
func splitTopLevel(s, sep string) []string {
	if s == "" {
		return nil
	}
	var (
		parts   []string
		depth   int
		quoted  bool
		escaped bool
		start   int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case quoted && c == '\\':
			escaped = true
		case c == '"':
			quoted = !quoted
		case quoted:
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0 && strings.HasPrefix(s[i:], sep):
			parts = append(parts, s[start:i])
			start = i + len(sep)
			i += len(sep) - 1
		}
	}
	return append(parts, s[start:])
}

// unquote strips surrounding quotes and resolves backslash escapes. Bare words are
// returned trimmed.
func unquote(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return strings.TrimFunc(s, unicode.IsSpace)
	}
	var b strings.Builder
	inner := s[1 : len(s)-1]
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			i++
		}
		b.WriteByte(inner[i])
	}
	return b.String()
}
