package filters

import (
	"strings"

	"github.com/stacklok/storefront-catalog/internal/catalog"
)

var literalEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// BuildQuery serializes the state and free text into the provider query string.
// Clauses come in a fixed order (free text, tags, collections, product types, then
// option dimensions in state order) so equal states always yield equal strings.
// Price bounds are never emitted. An empty state and blank text yield "".
func BuildQuery(state State, freeText string) string {
	var clauses []string
	if text := strings.TrimSpace(freeText); text != "" {
		clauses = append(clauses, text)
	}
	clauses = appendClause(clauses, catalog.FieldTag, state.Tags)
	clauses = appendClause(clauses, catalog.FieldCollection, state.Collections)
	clauses = appendClause(clauses, catalog.FieldProductType, state.ProductTypes)
	for _, opt := range state.Options {
		clauses = appendClause(clauses, catalog.OptionField(opt.Name), opt.Values)
	}
	return strings.Join(clauses, " AND ")
}

func appendClause(clauses []string, field string, values []string) []string {
	if len(values) == 0 {
		return clauses
	}
	terms := make([]string, 0, len(values))
	for _, v := range values {
		terms = append(terms, field+":"+quoteLiteral(v))
	}
	return append(clauses, "("+strings.Join(terms, " OR ")+")")
}

// quoteLiteral trims value and quotes it. Blank values become "" rather than
// being dropped.
func quoteLiteral(value string) string {
	return `"` + literalEscaper.Replace(strings.TrimSpace(value)) + `"`
}
