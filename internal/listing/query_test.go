package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildQuery_Defaults(t *testing.T) {
	q := BuildQuery(SearchParams{})

	assert.Equal(t, 9, q.Limit)
	assert.Equal(t, 0, q.Offset)
	assert.Equal(t, "", q.SearchTerm)
	assert.Equal(t, BoolFilter{false, true}, q.Offer)
	assert.Equal(t, BoolFilter{false, true}, q.Furnished)
	assert.Equal(t, BoolFilter{false, true}, q.Parking)
	assert.ElementsMatch(t, []ListingType{TypeRent, TypeSale}, q.Types)
	assert.Equal(t, SortSpec{Field: "createdAt", Descending: true}, q.Sort)
}

func TestBuildQuery_Pagination(t *testing.T) {
	tests := []struct {
		name       string
		limit      string
		startIndex string
		wantLimit  int
		wantOffset int
	}{
		{"explicit", "2", "4", 2, 4},
		{"non numeric", "abc", "xyz", 9, 0},
		{"zero limit", "0", "0", 9, 0},
		{"negative", "-3", "-5", 9, 0},
		{"padded", " 5 ", " 1 ", 5, 1},
		{"float", "2.5", "1.5", 9, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := BuildQuery(SearchParams{Limit: tt.limit, StartIndex: tt.startIndex})
			assert.Equal(t, tt.wantLimit, q.Limit)
			assert.Equal(t, tt.wantOffset, q.Offset)
		})
	}
}

func TestBuildQuery_BooleanFilters(t *testing.T) {
	tests := []struct {
		raw      string
		wantOnly bool
	}{
		{"true", true},
		{"false", false},
		{"", false},
		{"undefined", false},
		{"TRUE", false},
		{"1", false},
	}
	for _, tt := range tests {
		t.Run("raw="+tt.raw, func(t *testing.T) {
			q := BuildQuery(SearchParams{Offer: tt.raw, Furnished: tt.raw, Parking: tt.raw})
			for _, f := range []BoolFilter{q.Offer, q.Furnished, q.Parking} {
				v, only := f.Only()
				assert.Equal(t, tt.wantOnly, only)
				if only {
					assert.True(t, v)
				}
			}
		})
	}
}

func TestBuildQuery_Type(t *testing.T) {
	q := BuildQuery(SearchParams{Type: "rent"})
	only, ok := q.OnlyType()
	assert.True(t, ok)
	assert.Equal(t, TypeRent, only)

	q = BuildQuery(SearchParams{Type: "sale"})
	only, ok = q.OnlyType()
	assert.True(t, ok)
	assert.Equal(t, TypeSale, only)

	for _, raw := range []string{"", "all", "lease", "RENT"} {
		q = BuildQuery(SearchParams{Type: raw})
		_, ok = q.OnlyType()
		assert.False(t, ok, "type %q should not restrict", raw)
	}
}

func TestBuildQuery_Sort(t *testing.T) {
	q := BuildQuery(SearchParams{Sort: "regularPrice", Order: "asc"})
	assert.Equal(t, SortSpec{Field: "regularPrice"}, q.Sort)
	assert.Equal(t, "regular_price", q.Sort.Column())

	q = BuildQuery(SearchParams{Sort: "password", Order: "sideways"})
	assert.Equal(t, SortSpec{Field: "createdAt", Descending: true}, q.Sort)
	assert.Equal(t, "created_at", q.Sort.Column())

	q = BuildQuery(SearchParams{Sort: "created_at; DROP TABLE listings"})
	assert.Equal(t, "createdAt", q.Sort.Field)
}

func TestBuildQuery_SearchTermKeptVerbatim(t *testing.T) {
	q := BuildQuery(SearchParams{SearchTerm: "Sea View (2)"})
	assert.Equal(t, "Sea View (2)", q.SearchTerm)
}
