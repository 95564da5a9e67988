package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_Validate(t *testing.T) {
	assert.NoError(t, Filter(nil).Validate())
	assert.NoError(t, Where(Eq("genre", "Fiction"), Gt("published_year", 1900)).Validate())

	err := Where(Condition{Op: OpEq, Value: 1}).Validate()
	assert.ErrorIs(t, err, ErrInvalidFilter)

	err = Where(Condition{Field: "price", Op: "$regex", Value: "x"}).Validate()
	assert.ErrorIs(t, err, ErrInvalidFilter)
	assert.Contains(t, err.Error(), "$regex")
}

func TestFilter_String(t *testing.T) {
	assert.Equal(t, "{}", Filter(nil).String())
	assert.Equal(t, "in_stock = true AND published_year $gt 1900",
		Where(Eq("in_stock", true), Gt("published_year", 1900)).String())
}

func TestFilter_Equalities(t *testing.T) {
	eq := Where(Eq("author", "George Orwell"), Gt("price", 5), Eq("in_stock", true)).Equalities()
	assert.Equal(t, map[string]interface{}{"author": "George Orwell", "in_stock": true}, eq)
}

func TestFindOptions_Validate(t *testing.T) {
	var nilOpts *FindOptions
	assert.NoError(t, nilOpts.Validate())
	assert.NoError(t, (&FindOptions{Sort: []SortKey{Desc("price")}, Limit: 3}).Validate())

	assert.ErrorIs(t, (&FindOptions{Skip: -1}).Validate(), ErrInvalidOptions)
	assert.ErrorIs(t, (&FindOptions{Limit: -1}).Validate(), ErrInvalidOptions)
	assert.ErrorIs(t, (&FindOptions{Sort: []SortKey{{Field: "price"}}}).Validate(), ErrInvalidOptions)
	assert.ErrorIs(t, (&FindOptions{Sort: []SortKey{{Order: Ascending}}}).Validate(), ErrInvalidOptions)
}

func TestProjection_IsZero(t *testing.T) {
	var p *Projection
	assert.True(t, p.IsZero())
	assert.True(t, (&Projection{}).IsZero())
	assert.False(t, (&Projection{ExcludeID: true}).IsZero())
	assert.False(t, (&Projection{Include: []string{"title"}}).IsZero())
}

func TestPage_FindOptions(t *testing.T) {
	opts := Page(2, 5).FindOptions()
	assert.Equal(t, &FindOptions{Sort: []SortKey{Asc(IDField)}, Skip: 5, Limit: 5}, opts)

	opts = Page(1, 5).FindOptions(Desc("price"))
	assert.Equal(t, []SortKey{Desc("price"), Asc(IDField)}, opts.Sort)

	opts = Page(1, 5).FindOptions(Desc(IDField))
	assert.Equal(t, []SortKey{Desc(IDField)}, opts.Sort, "an explicit _id key is not repeated")

	assert.Equal(t, int64(0), Page(0, 5).Offset, "page numbers below 1 clamp to the first page")
}

func TestIndexModel(t *testing.T) {
	m := AscendingIndex("author", "published_year")
	assert.Equal(t, "author_1_published_year_1", m.Name())
	assert.Equal(t, []string{"author", "published_year"}, m.Fields())
	assert.NoError(t, m.Validate())

	desc := IndexModel{Keys: []IndexKey{{Field: "price", Order: Descending}}}
	assert.Equal(t, "price_-1", desc.Name())

	assert.ErrorIs(t, IndexModel{}.Validate(), ErrInvalidOptions)
	assert.ErrorIs(t, AscendingIndex("a", "a").Validate(), ErrInvalidOptions)
	assert.ErrorIs(t, AscendingIndex("").Validate(), ErrInvalidOptions)
	assert.ErrorIs(t, IndexModel{Keys: []IndexKey{{Field: "a"}}}.Validate(), ErrInvalidOptions)
}

func TestPipeline_Validate(t *testing.T) {
	valid := Pipeline{
		GroupStage{By: ByBucket("published_year", 10), Accumulators: []Accumulator{Count("count")}},
		ProjectStage{Fields: []string{"count"}, Computed: []ComputedField{{Name: "decade", Field: "_id", Factor: 10}}, ExcludeID: true},
		SortStage{Keys: []SortKey{Asc("decade")}},
		LimitStage{N: 5},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name     string
		pipeline Pipeline
	}{
		{"empty", Pipeline{}},
		{"nil stage", Pipeline{nil}},
		{"group without key", Pipeline{GroupStage{}}},
		{"negative bucket", Pipeline{GroupStage{By: GroupKey{Field: "y", Bucket: -1}}}},
		{"duplicate accumulator", Pipeline{GroupStage{By: ByField("genre"), Accumulators: []Accumulator{Count("n"), Count("n")}}}},
		{"accumulator named _id", Pipeline{GroupStage{By: ByField("genre"), Accumulators: []Accumulator{Count("_id")}}}},
		{"avg without field", Pipeline{GroupStage{By: ByField("genre"), Accumulators: []Accumulator{{Name: "a", Op: AccAvg}}}}},
		{"unknown accumulator", Pipeline{GroupStage{By: ByField("genre"), Accumulators: []Accumulator{{Name: "a", Op: "$max", Field: "x"}}}}},
		{"empty sort", Pipeline{SortStage{}}},
		{"bad sort order", Pipeline{SortStage{Keys: []SortKey{{Field: "x", Order: 2}}}}},
		{"zero limit", Pipeline{LimitStage{}}},
		{"empty project", Pipeline{ProjectStage{}}},
		{"computed without source", Pipeline{ProjectStage{Computed: []ComputedField{{Name: "x"}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.pipeline.Validate(), ErrInvalidPipeline)
		})
	}
}

func TestDocument(t *testing.T) {
	doc := Document{"_id": "abc", "title": "1984"}
	clone := doc.Clone()
	clone["title"] = "Animal Farm"
	assert.Equal(t, "1984", doc["title"])
	assert.Equal(t, "abc", doc.ID())
	assert.Equal(t, "", Document{}.ID())
	assert.Equal(t, "42", Document{"_id": 42}.ID())
}

func TestBook_RoundTrip(t *testing.T) {
	b := Book{Title: "1984", Author: "George Orwell", Genre: "Dystopian", PublishedYear: 1949, Price: 10.99, InStock: true}
	doc := b.ToDocument()
	assert.NotContains(t, doc, IDField)
	assert.NotContains(t, doc, FieldPages)

	doc[IDField] = "x"
	doc[FieldPublishedYear] = int64(1949)
	got := BookFromDocument(doc)
	b.ID = "x"
	assert.Equal(t, b, got)
}
