package storage

import (
	"testing"

	"github.com/adfharrison1/bookreport/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestMatchesFilter(t *testing.T) {
	doc := domain.Document{"title": "1984", "author": "George Orwell", "published_year": 1949, "in_stock": true}

	tests := []struct {
		name   string
		filter domain.Filter
		want   bool
	}{
		{"empty filter", nil, true},
		{"equality", domain.Where(domain.Eq("author", "George Orwell")), true},
		{"equality is case-sensitive", domain.Where(domain.Eq("author", "george orwell")), false},
		{"numeric equality across widths", domain.Where(domain.Eq("published_year", 1949.0)), true},
		{"greater than", domain.Where(domain.Gt("published_year", 1900)), true},
		{"greater than fails", domain.Where(domain.Gt("published_year", 1949)), false},
		{"conjunction", domain.Where(domain.Eq("in_stock", true), domain.Gt("published_year", 1900)), true},
		{"conjunction one false", domain.Where(domain.Eq("in_stock", false), domain.Gt("published_year", 1900)), false},
		{"missing field", domain.Where(domain.Eq("genre", "Fiction")), false},
		{"missing field equals null", domain.Where(domain.Eq("genre", nil)), true},
		{"type bracketing", domain.Where(domain.Gt("published_year", "1900")), false},
		{"not equal", domain.Where(domain.Condition{Field: "title", Op: domain.OpNe, Value: "Animal Farm"}), true},
		{"lte", domain.Where(domain.Condition{Field: "published_year", Op: domain.OpLte, Value: 1949}), true},
		{"lt", domain.Where(domain.Condition{Field: "published_year", Op: domain.OpLt, Value: 1949}), false},
		{"gte", domain.Where(domain.Condition{Field: "published_year", Op: domain.OpGte, Value: 1949}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesFilter(doc, tt.filter))
		})
	}
}

func TestValuesMatch(t *testing.T) {
	assert.True(t, ValuesMatch("Alice", "Alice"))
	assert.False(t, ValuesMatch("Alice", "alice"))
	assert.True(t, ValuesMatch(42, 42))
	assert.True(t, ValuesMatch(42, 42.0))
	assert.True(t, ValuesMatch(int8(42), uint64(42)))
	assert.True(t, ValuesMatch(nil, nil))
	assert.False(t, ValuesMatch(nil, 1))
	assert.False(t, ValuesMatch("42", 42))
	assert.False(t, ValuesMatch(true, 1))
}

func TestToFloat64(t *testing.T) {
	cases := []struct {
		input    interface{}
		expected float64
		ok       bool
	}{
		{42, 42.0, true},
		{int8(-3), -3.0, true},
		{int32(7), 7.0, true},
		{int64(8), 8.0, true},
		{float32(3.5), 3.5, true},
		{float64(2.2), 2.2, true},
		{uint8(5), 5.0, true},
		{uint64(9), 9.0, true},
		{"not a number", 0, false},
		{nil, 0, false},
	}
	for _, c := range cases {
		result, ok := ToFloat64(c.input)
		assert.Equal(t, c.ok, ok, "input %v", c.input)
		if c.ok {
			assert.Equal(t, c.expected, result)
		}
	}
}

func TestCompareValues(t *testing.T) {
	assert.Equal(t, -1, CompareValues(nil, 0))
	assert.Equal(t, -1, CompareValues(100, "a"))
	assert.Equal(t, -1, CompareValues("z", false))
	assert.Equal(t, 0, CompareValues(10, 10.0))
	assert.Equal(t, 1, CompareValues(10.99, 8.5))
	assert.Equal(t, -1, CompareValues("Animal Farm", "Moby Dick"))
	assert.Equal(t, -1, CompareValues(false, true))
	assert.Equal(t, 0, CompareValues(nil, nil))
}

func TestSortDocuments(t *testing.T) {
	docs := []domain.Document{
		{"_id": "a", "price": 12.5},
		{"_id": "b", "price": 8.99},
		{"_id": "c"},
		{"_id": "d", "price": 12.5},
	}

	SortDocuments(docs, []domain.SortKey{domain.Asc("price")})
	assert.Equal(t, []string{"c", "b", "a", "d"}, ids(docs))

	SortDocuments(docs, []domain.SortKey{domain.Desc("price"), domain.Desc("_id")})
	assert.Equal(t, []string{"d", "a", "b", "c"}, ids(docs))
}

func TestApplyProjection(t *testing.T) {
	doc := domain.Document{"_id": "x", "title": "1984", "author": "George Orwell", "price": 8.5, "genre": "Dystopian"}

	full := ApplyProjection(doc, nil)
	assert.Equal(t, doc, full)
	full["title"] = "changed"
	assert.Equal(t, "1984", doc["title"], "projection must copy")

	p := ApplyProjection(doc, &domain.Projection{Include: []string{"title", "author", "price"}, ExcludeID: true})
	assert.Equal(t, domain.Document{"title": "1984", "author": "George Orwell", "price": 8.5}, p)

	withID := ApplyProjection(doc, &domain.Projection{Include: []string{"title"}})
	assert.Equal(t, domain.Document{"_id": "x", "title": "1984"}, withID)

	noID := ApplyProjection(doc, &domain.Projection{ExcludeID: true})
	assert.NotContains(t, noID, "_id")
	assert.Len(t, noID, 4)
}

func ids(docs []domain.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID()
	}
	return out
}
