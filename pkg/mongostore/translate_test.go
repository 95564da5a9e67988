package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/adfharrison1/bookreport/pkg/domain"
)

func TestFilterToBSON(t *testing.T) {
	tests := []struct {
		name   string
		filter domain.Filter
		want   bson.D
	}{
		{"empty", nil, bson.D{}},
		{"equality", domain.Where(domain.Eq("genre", "Fiction")), bson.D{{Key: "genre", Value: "Fiction"}}},
		{"range", domain.Where(domain.Gt("published_year", 1900)), bson.D{
			{Key: "published_year", Value: bson.D{{Key: "$gt", Value: 1900}}},
		}},
		{"conjunction", domain.Where(domain.Eq("in_stock", true), domain.Gt("published_year", 1900)), bson.D{
			{Key: "in_stock", Value: true},
			{Key: "published_year", Value: bson.D{{Key: "$gt", Value: 1900}}},
		}},
		{"same field merges", domain.Where(
			domain.Gt("price", 5),
			domain.Condition{Field: "price", Op: domain.OpLte, Value: 10},
		), bson.D{
			{Key: "price", Value: bson.D{{Key: "$gt", Value: 5}, {Key: "$lte", Value: 10}}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filterToBSON(tt.filter))
		})
	}
}

func TestFilterToBSON_ObjectID(t *testing.T) {
	oid := bson.NewObjectID()
	got := filterToBSON(domain.Where(domain.Eq("_id", oid.Hex())))
	assert.Equal(t, bson.D{{Key: "_id", Value: oid}}, got)

	got = filterToBSON(domain.Where(domain.Eq("_id", "custom")))
	assert.Equal(t, bson.D{{Key: "_id", Value: "custom"}}, got, "non-hex IDs stay strings")

	got = filterToBSON(domain.Where(domain.Eq("title", oid.Hex())))
	assert.Equal(t, bson.D{{Key: "title", Value: oid.Hex()}}, got, "only _id is converted")
}

func TestSortAndProjectionToBSON(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: 1}},
		sortToBSON([]domain.SortKey{domain.Desc("price"), domain.Asc("_id")}))

	assert.Nil(t, projectionToBSON(nil))
	assert.Equal(t, bson.D{
		{Key: "title", Value: 1},
		{Key: "author", Value: 1},
		{Key: "price", Value: 1},
		{Key: "_id", Value: 0},
	}, projectionToBSON(&domain.Projection{Include: []string{"title", "author", "price"}, ExcludeID: true}))

	assert.Equal(t, bson.D{{Key: "author", Value: 1}, {Key: "published_year", Value: 1}},
		indexKeysToBSON(domain.AscendingIndex("author", "published_year")))
}

func TestPipelineToBSON(t *testing.T) {
	got, err := pipelineToBSON(domain.Pipeline{
		domain.GroupStage{By: domain.ByBucket("published_year", 10), Accumulators: []domain.Accumulator{domain.Count("count")}},
		domain.ProjectStage{
			Fields:    []string{"count"},
			Computed:  []domain.ComputedField{{Name: "decade", Field: "_id", Factor: 10}},
			ExcludeID: true,
		},
		domain.SortStage{Keys: []domain.SortKey{domain.Asc("decade")}},
		domain.LimitStage{N: 3},
	})
	require.NoError(t, err)

	want := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$floor", Value: bson.D{{Key: "$divide", Value: bson.A{"$published_year", 10}}}}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "count", Value: 1},
			{Key: "decade", Value: bson.D{{Key: "$multiply", Value: bson.A{"$_id", 10.0}}}},
			{Key: "_id", Value: 0},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "decade", Value: 1}}}},
		{{Key: "$limit", Value: int64(3)}},
	}
	assert.Equal(t, want, got)
}

func TestPipelineToBSON_Group(t *testing.T) {
	got, err := pipelineToBSON(domain.Pipeline{
		domain.GroupStage{By: domain.ByField("genre"), Accumulators: []domain.Accumulator{
			domain.Avg("avgPrice", "price"),
			domain.Sum("pages", "pages"),
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$genre"},
			{Key: "avgPrice", Value: bson.D{{Key: "$avg", Value: "$price"}}},
			{Key: "pages", Value: bson.D{{Key: "$sum", Value: "$pages"}}},
		}}},
	}, got)
}

type unknownStage struct{}

func (unknownStage) StageName() string { return "$unknown" }
func (unknownStage) Validate() error   { return nil }

func TestPipelineToBSON_UnknownStage(t *testing.T) {
	_, err := pipelineToBSON(domain.Pipeline{unknownStage{}})
	assert.ErrorIs(t, err, domain.ErrInvalidPipeline)
}

func TestFromBSON(t *testing.T) {
	oid := bson.NewObjectID()
	doc := fromBSON(bson.M{
		"_id":    oid,
		"title":  "1984",
		"pages":  int32(328),
		"price":  10.99,
		"nested": bson.D{{Key: "a", Value: int32(1)}},
		"tags":   bson.A{"x", oid},
	})
	assert.Equal(t, domain.Document{
		"_id":    oid.Hex(),
		"title":  "1984",
		"pages":  int64(328),
		"price":  10.99,
		"nested": map[string]interface{}{"a": int64(1)},
		"tags":   []interface{}{"x", oid.Hex()},
	}, doc)
	assert.Equal(t, oid.Hex(), doc.ID())
}

func TestToBSONDocument(t *testing.T) {
	oid := bson.NewObjectID()
	got := toBSONDocument(domain.Document{"_id": oid.Hex(), "title": "Dune"})
	assert.Equal(t, bson.M{"_id": oid, "title": "Dune"}, got)
	assert.Equal(t, oid.Hex(), idString(oid))
	assert.Equal(t, "custom", idString("custom"))
}

func TestExplainCommand(t *testing.T) {
	cmd := explainCommand("books", domain.Where(domain.Eq("title", "1984")))
	assert.Equal(t, bson.D{
		{Key: "explain", Value: bson.D{
			{Key: "find", Value: "books"},
			{Key: "filter", Value: bson.D{{Key: "title", Value: "1984"}}},
		}},
		{Key: "verbosity", Value: "executionStats"},
	}, cmd)
}

func TestConnect_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Connect(ctx, "mongodb://localhost:27017", "")
	assert.Error(t, err)

	_, err = Connect(ctx, "not-a-mongo-uri", "bookstore", WithConnectTimeout(100*time.Millisecond))
	assert.Error(t, err)
}
