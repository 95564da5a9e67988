package domain

import "context"

// Store is a handle to a document database. It is acquired once, passed
// explicitly to whoever needs it, and released with Close.
type Store interface {
	Collection(name string) Collection
	Close(ctx context.Context) error
}

// Collection is the set of operations the report runner and the seeder
// issue against one collection
type Collection interface {
	Name() string
	Find(ctx context.Context, filter Filter, opts *FindOptions) ([]Document, error)
	InsertMany(ctx context.Context, docs []Document) ([]string, error)
	UpdateOne(ctx context.Context, filter Filter, set Document) (UpdateResult, error)
	DeleteOne(ctx context.Context, filter Filter) (DeleteResult, error)
	Aggregate(ctx context.Context, pipeline Pipeline) ([]Document, error)
	CreateIndex(ctx context.Context, model IndexModel) (string, error)
	Explain(ctx context.Context, filter Filter) (Document, error)
	Drop(ctx context.Context) error
}

// UpdateResult reports the effect of an update
type UpdateResult struct {
	Matched  int64 `json:"matched"`
	Modified int64 `json:"modified"`
}

// DeleteResult reports the effect of a delete
type DeleteResult struct {
	Deleted int64 `json:"deleted"`
}
