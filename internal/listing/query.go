// File: internal/listing/query.go
package listing

import (
	"strconv"
	"strings"
)

const (
	DefaultLimit = 9
	DefaultSort  = "createdAt"
)

// SearchParams are the raw query-string parameters of GET /listing/get.
// Everything is a string so malformed values can fall back to defaults instead
// of failing the bind.
type SearchParams struct {
	Limit      string `form:"limit"`
	StartIndex string `form:"startIndex"`
	Offer      string `form:"offer"`
	Furnished  string `form:"furnished"`
	Parking    string `form:"parking"`
	Type       string `form:"type"`
	SearchTerm string `form:"searchTerm"`
	Sort       string `form:"sort"`
	Order      string `form:"order"`
}

// BoolFilter is the set of values a boolean attribute may take in a result.
type BoolFilter []bool

var (
	anyBool  = BoolFilter{false, true}
	onlyTrue = BoolFilter{true}
)

// Only returns the single accepted value, or ok=false when both are accepted.
func (f BoolFilter) Only() (value bool, ok bool) {
	if len(f) == 1 {
		return f[0], true
	}
	return false, false
}

// SortSpec orders search results by one whitelisted attribute.
type SortSpec struct {
	Field      string
	Descending bool
}

// Query is the normalized, store-neutral form of a search request.
type Query struct {
	SearchTerm string
	Offer      BoolFilter
	Furnished  BoolFilter
	Parking    BoolFilter
	Types      []ListingType
	Sort       SortSpec
	Limit      int
	Offset     int
}

// OnlyType returns the single accepted type, or ok=false when both are accepted.
func (q Query) OnlyType() (ListingType, bool) {
	if len(q.Types) == 1 {
		return q.Types[0], true
	}
	return "", false
}

// sortable maps the public attribute names accepted in ?sort= to GORM columns.
// Mongo documents and the search index use the public names directly.
var sortable = map[string]string{
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
	"regularPrice":  "regular_price",
	"discountPrice": "discount_price",
	"name":          "name",
	"bedrooms":      "bedrooms",
	"bathrooms":     "bathrooms",
}

// BuildQuery turns raw request parameters into a Query. It never fails:
// every malformed or missing parameter takes its default.
func BuildQuery(p SearchParams) Query {
	q := Query{
		SearchTerm: p.SearchTerm,
		Offer:      boolFilter(p.Offer),
		Furnished:  boolFilter(p.Furnished),
		Parking:    boolFilter(p.Parking),
		Types:      typeFilter(p.Type),
		Sort:       SortSpec{Field: DefaultSort, Descending: true},
		Limit:      DefaultLimit,
	}

	if n, err := strconv.Atoi(strings.TrimSpace(p.Limit)); err == nil && n > 0 {
		q.Limit = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(p.StartIndex)); err == nil && n > 0 {
		q.Offset = n
	}
	if _, ok := sortable[p.Sort]; ok {
		q.Sort.Field = p.Sort
	}
	if p.Order == "asc" {
		q.Sort.Descending = false
	}
	return q
}

// boolFilter restricts to true only for the literal "true"; anything else,
// including "false", means either value.
func boolFilter(raw string) BoolFilter {
	if raw == "true" {
		return onlyTrue
	}
	return anyBool
}

func typeFilter(raw string) []ListingType {
	t := ListingType(raw)
	if t.Valid() {
		return []ListingType{t}
	}
	return []ListingType{TypeRent, TypeSale}
}

// Column returns the GORM column for the sort field.
func (s SortSpec) Column() string {
	if col, ok := sortable[s.Field]; ok {
		return col
	}
	return sortable[DefaultSort]
}
