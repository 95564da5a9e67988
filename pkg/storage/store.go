package storage

import (
	"context"
	"fmt"

	"github.com/adfharrison1/bookreport/pkg/domain"
)

// Open creates an engine, loads its data file if one is configured and
// starts background workers
func Open(options ...StorageOption) (*StorageEngine, error) {
	engine := NewStorageEngine(options...)
	if engine.dataFile != "" {
		if err := engine.LoadFromFile(engine.dataFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", engine.dataFile, err)
		}
	}
	engine.StartBackgroundWorkers()
	return engine, nil
}

// Close stops background workers and writes the data file. After Close
// every operation fails with domain.ErrStoreClosed; closing again is a no-op.
func (se *StorageEngine) Close(ctx context.Context) error {
	se.mu.RLock()
	closed := se.closed
	se.mu.RUnlock()
	if closed {
		return nil
	}

	se.StopBackgroundWorkers()
	saveErr := se.Save()

	se.mu.Lock()
	se.closed = true
	se.mu.Unlock()

	if saveErr != nil {
		return fmt.Errorf("failed to save on close: %w", saveErr)
	}
	return nil
}

// Collection returns a handle implementing domain.Collection
func (se *StorageEngine) Collection(name string) domain.Collection {
	return &collectionHandle{engine: se, name: name}
}

var _ domain.Store = (*StorageEngine)(nil)

// collectionHandle binds a collection name to the engine. Contexts are
// only checked for cancellation; engine calls do not block on I/O.
type collectionHandle struct {
	engine *StorageEngine
	name   string
}

func (c *collectionHandle) Name() string { return c.name }

func (c *collectionHandle) Find(ctx context.Context, filter domain.Filter, opts *domain.FindOptions) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.engine.Find(c.name, filter, opts)
}

func (c *collectionHandle) InsertMany(ctx context.Context, docs []domain.Document) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.engine.InsertMany(c.name, docs)
}

func (c *collectionHandle) UpdateOne(ctx context.Context, filter domain.Filter, set domain.Document) (domain.UpdateResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.UpdateResult{}, err
	}
	return c.engine.UpdateOne(c.name, filter, set)
}

func (c *collectionHandle) DeleteOne(ctx context.Context, filter domain.Filter) (domain.DeleteResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.DeleteResult{}, err
	}
	return c.engine.DeleteOne(c.name, filter)
}

func (c *collectionHandle) Aggregate(ctx context.Context, pipeline domain.Pipeline) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.engine.Aggregate(c.name, pipeline)
}

func (c *collectionHandle) CreateIndex(ctx context.Context, model domain.IndexModel) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.engine.CreateIndex(c.name, model)
}

func (c *collectionHandle) Explain(ctx context.Context, filter domain.Filter) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.engine.Explain(c.name, filter)
}

func (c *collectionHandle) Drop(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.engine.DropCollection(c.name)
}
