// Package report runs the fixed catalog of bookstore queries against a
// collection and renders each result.
package report

import (
	"context"

	"github.com/adfharrison1/bookreport/pkg/domain"
)

// Kind tells the renderer how to present a result
type Kind int

const (
	KindRows Kind = iota
	KindUpdate
	KindDelete
	KindIndex
	KindExplain
)

// Operation is one entry of the catalog. Name is stable and used to select
// operations from the command line and the HTTP surface.
type Operation struct {
	Name    string
	Title   string
	Kind    Kind
	Mutates bool
	Run     func(ctx context.Context, coll domain.Collection) (Result, error)
}

// Result holds whatever an operation produced; only the field matching the
// operation's Kind is set
type Result struct {
	Rows      []domain.Document    `json:"rows,omitempty"`
	Update    *domain.UpdateResult `json:"update,omitempty"`
	Delete    *domain.DeleteResult `json:"delete,omitempty"`
	IndexName string               `json:"index,omitempty"`
	Explain   domain.Document      `json:"explain,omitempty"`
}

// Count is the number of rows, or documents affected for writes
func (r Result) Count() int64 {
	switch {
	case r.Update != nil:
		return r.Update.Modified
	case r.Delete != nil:
		return r.Delete.Deleted
	}
	return int64(len(r.Rows))
}

// Catalog inputs
const (
	FictionGenre = "Fiction"
	AfterYear    = 1900
	OrwellAuthor = "George Orwell"
	UpdatedTitle = "Moby Dick"
	UpdatedPrice = 15.99
	DeletedTitle = "Animal Farm"
	ExplainTitle = "1984"
	PageSize     = 5
	DecadeWidth  = 10
)

// DecadePipeline groups by floor(published_year / 10), projects the decade
// as that index times 10 with its count, and sorts by decade ascending
func DecadePipeline() domain.Pipeline {
	return domain.Pipeline{
		domain.GroupStage{
			By:           domain.ByBucket(domain.FieldPublishedYear, DecadeWidth),
			Accumulators: []domain.Accumulator{domain.Count("count")},
		},
		domain.ProjectStage{
			Fields:    []string{"count"},
			Computed:  []domain.ComputedField{{Name: "decade", Field: domain.IDField, Factor: DecadeWidth}},
			ExcludeID: true,
		},
		domain.SortStage{Keys: []domain.SortKey{domain.Asc("decade")}},
	}
}

// Catalog returns the operations in execution order
func Catalog() []Operation {
	return []Operation{
		find("books-in-genre", "Books in Fiction genre",
			domain.Where(domain.Eq(domain.FieldGenre, FictionGenre)), nil),
		find("books-after-year", "Books published after 1900",
			domain.Where(domain.Gt(domain.FieldPublishedYear, AfterYear)), nil),
		find("books-by-author", "Books by George Orwell",
			domain.Where(domain.Eq(domain.FieldAuthor, OrwellAuthor)), nil),
		{
			Name:    "update-price",
			Title:   "Updating price of 'Moby Dick'",
			Kind:    KindUpdate,
			Mutates: true,
			Run: func(ctx context.Context, coll domain.Collection) (Result, error) {
				res, err := coll.UpdateOne(ctx,
					domain.Where(domain.Eq(domain.FieldTitle, UpdatedTitle)),
					domain.Document{domain.FieldPrice: UpdatedPrice})
				if err != nil {
					return Result{}, err
				}
				return Result{Update: &res}, nil
			},
		},
		{
			Name:    "delete-book",
			Title:   "Deleting 'Animal Farm'",
			Kind:    KindDelete,
			Mutates: true,
			Run: func(ctx context.Context, coll domain.Collection) (Result, error) {
				res, err := coll.DeleteOne(ctx, domain.Where(domain.Eq(domain.FieldTitle, DeletedTitle)))
				if err != nil {
					return Result{}, err
				}
				return Result{Delete: &res}, nil
			},
		},
		find("in-stock-after-year", "Books in stock & published after 1900",
			domain.Where(domain.Eq(domain.FieldInStock, true), domain.Gt(domain.FieldPublishedYear, AfterYear)), nil),
		find("title-author-price", "Books with only title, author, price", nil, &domain.FindOptions{
			Projection: &domain.Projection{
				Include:   []string{domain.FieldTitle, domain.FieldAuthor, domain.FieldPrice},
				ExcludeID: true,
			},
		}),
		find("sort-price-asc", "Books sorted by price ascending", nil,
			&domain.FindOptions{Sort: []domain.SortKey{domain.Asc(domain.FieldPrice)}}),
		find("sort-price-desc", "Books sorted by price descending", nil,
			&domain.FindOptions{Sort: []domain.SortKey{domain.Desc(domain.FieldPrice)}}),
		find("page-1", "Pagination (Page 1 - 5 books)", nil, domain.Page(1, PageSize).FindOptions()),
		find("page-2", "Pagination (Page 2 - next 5 books)", nil, domain.Page(2, PageSize).FindOptions()),
		aggregate("avg-price-by-genre", "Average price of books by genre", domain.Pipeline{
			domain.GroupStage{
				By:           domain.ByField(domain.FieldGenre),
				Accumulators: []domain.Accumulator{domain.Avg("avgPrice", domain.FieldPrice)},
			},
		}),
		aggregate("top-author", "Author with most books", domain.Pipeline{
			domain.GroupStage{
				By:           domain.ByField(domain.FieldAuthor),
				Accumulators: []domain.Accumulator{domain.Count("count")},
			},
			domain.SortStage{Keys: []domain.SortKey{domain.Desc("count")}},
			domain.LimitStage{N: 1},
		}),
		aggregate("books-by-decade", "Books grouped by decade", DecadePipeline()),
		createIndex("index-title", "Creating index on title",
			domain.AscendingIndex(domain.FieldTitle)),
		createIndex("index-author-year", "Creating compound index on author + published_year",
			domain.AscendingIndex(domain.FieldAuthor, domain.FieldPublishedYear)),
		{
			Name:  "explain-title",
			Title: "Explain query with index",
			Kind:  KindExplain,
			Run: func(ctx context.Context, coll domain.Collection) (Result, error) {
				plan, err := coll.Explain(ctx, domain.Where(domain.Eq(domain.FieldTitle, ExplainTitle)))
				if err != nil {
					return Result{}, err
				}
				return Result{Explain: plan}, nil
			},
		},
	}
}

// Lookup finds a catalog operation by name
func Lookup(name string) (Operation, bool) {
	for _, op := range Catalog() {
		if op.Name == name {
			return op, true
		}
	}
	return Operation{}, false
}

func find(name, title string, filter domain.Filter, opts *domain.FindOptions) Operation {
	return Operation{
		Name:  name,
		Title: title,
		Kind:  KindRows,
		Run: func(ctx context.Context, coll domain.Collection) (Result, error) {
			docs, err := coll.Find(ctx, filter, opts)
			if err != nil {
				return Result{}, err
			}
			return Result{Rows: docs}, nil
		},
	}
}

func aggregate(name, title string, pipeline domain.Pipeline) Operation {
	return Operation{
		Name:  name,
		Title: title,
		Kind:  KindRows,
		Run: func(ctx context.Context, coll domain.Collection) (Result, error) {
			docs, err := coll.Aggregate(ctx, pipeline)
			if err != nil {
				return Result{}, err
			}
			return Result{Rows: docs}, nil
		},
	}
}

func createIndex(name, title string, model domain.IndexModel) Operation {
	return Operation{
		Name:    name,
		Title:   title,
		Kind:    KindIndex,
		Mutates: true,
		Run: func(ctx context.Context, coll domain.Collection) (Result, error) {
			indexName, err := coll.CreateIndex(ctx, model)
			if err != nil {
				return Result{}, err
			}
			return Result{IndexName: indexName}, nil
		},
	}
}
