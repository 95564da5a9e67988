// Package mongostore implements domain.Store on a MongoDB deployment.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"github.com/adfharrison1/bookreport/pkg/domain"
)

// Store is a connected MongoDB database
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.SugaredLogger
}

type Option func(*config)

type config struct {
	connectTimeout time.Duration
	logger         *zap.Logger
}

// WithConnectTimeout bounds server selection and the initial ping
func WithConnectTimeout(d time.Duration) Option {
	return func(c *config) {
		c.connectTimeout = d
	}
}

// WithLogger sets the logger used for connection messages
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

var _ domain.Store = (*Store)(nil)

// Connect opens a client for uri and pings the primary before returning
func Connect(ctx context.Context, uri, database string, opts ...Option) (*Store, error) {
	cfg := &config{connectTimeout: 10 * time.Second, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}
	if database == "" {
		return nil, fmt.Errorf("database name cannot be empty")
	}

	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(cfg.connectTimeout).
		SetServerSelectionTimeout(cfg.connectTimeout)
	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping %s: %w", uri, err)
	}

	logger := cfg.logger.Sugar()
	logger.Infof("Connected to MongoDB database '%s'", database)
	return &Store{client: client, db: client.Database(database), logger: logger}, nil
}

// Close disconnects the client
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect: %w", err)
	}
	return nil
}

// Collection returns a handle on a collection of the database
func (s *Store) Collection(name string) domain.Collection {
	return &Collection{db: s.db, coll: s.db.Collection(name)}
}

// Collection implements domain.Collection over a mongo collection
type Collection struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func (c *Collection) Name() string { return c.coll.Name() }

func (c *Collection) Find(ctx context.Context, filter domain.Filter, opts *domain.FindOptions) ([]domain.Document, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	findOpts := options.Find()
	if opts != nil {
		if len(opts.Sort) > 0 {
			findOpts.SetSort(sortToBSON(opts.Sort))
		}
		if p := projectionToBSON(opts.Projection); p != nil {
			findOpts.SetProjection(p)
		}
		if opts.Skip > 0 {
			findOpts.SetSkip(opts.Skip)
		}
		if opts.Limit > 0 {
			findOpts.SetLimit(opts.Limit)
		}
	}

	cursor, err := c.coll.Find(ctx, filterToBSON(filter), findOpts)
	if err != nil {
		return nil, fmt.Errorf("find on %s: %w", c.Name(), err)
	}
	return decodeAll(ctx, cursor)
}

func (c *Collection) InsertMany(ctx context.Context, docs []domain.Document) ([]string, error) {
	if len(docs) == 0 {
		return []string{}, nil
	}
	in := make([]interface{}, len(docs))
	for i, doc := range docs {
		in[i] = toBSONDocument(doc)
	}
	res, err := c.coll.InsertMany(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("insert into %s: %w", c.Name(), err)
	}
	ids := make([]string, len(res.InsertedIDs))
	for i, id := range res.InsertedIDs {
		ids[i] = idString(id)
	}
	return ids, nil
}

func (c *Collection) UpdateOne(ctx context.Context, filter domain.Filter, set domain.Document) (domain.UpdateResult, error) {
	if err := filter.Validate(); err != nil {
		return domain.UpdateResult{}, err
	}
	if _, ok := set[domain.IDField]; ok {
		return domain.UpdateResult{}, fmt.Errorf("%w: the _id field cannot be updated", domain.ErrInvalidOptions)
	}
	update := bson.D{{Key: "$set", Value: bson.M(set)}}
	res, err := c.coll.UpdateOne(ctx, filterToBSON(filter), update)
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("update on %s: %w", c.Name(), err)
	}
	return domain.UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

func (c *Collection) DeleteOne(ctx context.Context, filter domain.Filter) (domain.DeleteResult, error) {
	if err := filter.Validate(); err != nil {
		return domain.DeleteResult{}, err
	}
	res, err := c.coll.DeleteOne(ctx, filterToBSON(filter))
	if err != nil {
		return domain.DeleteResult{}, fmt.Errorf("delete on %s: %w", c.Name(), err)
	}
	return domain.DeleteResult{Deleted: res.DeletedCount}, nil
}

func (c *Collection) Aggregate(ctx context.Context, pipeline domain.Pipeline) ([]domain.Document, error) {
	if err := pipeline.Validate(); err != nil {
		return nil, err
	}
	stages, err := pipelineToBSON(pipeline)
	if err != nil {
		return nil, err
	}
	cursor, err := c.coll.Aggregate(ctx, stages)
	if err != nil {
		return nil, fmt.Errorf("aggregate on %s: %w", c.Name(), err)
	}
	return decodeAll(ctx, cursor)
}

func (c *Collection) CreateIndex(ctx context.Context, model domain.IndexModel) (string, error) {
	if err := model.Validate(); err != nil {
		return "", err
	}
	name, err := c.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    indexKeysToBSON(model),
		Options: options.Index().SetName(model.Name()),
	})
	if err != nil {
		return "", fmt.Errorf("create index %s on %s: %w", model.Name(), c.Name(), err)
	}
	return name, nil
}

// Explain runs the explain command for a find with executionStats verbosity
func (c *Collection) Explain(ctx context.Context, filter domain.Filter) (domain.Document, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	var out bson.M
	err := c.db.RunCommand(ctx, explainCommand(c.Name(), filter)).Decode(&out)
	if err != nil {
		return nil, fmt.Errorf("explain on %s: %w", c.Name(), err)
	}
	return fromBSON(out), nil
}

func explainCommand(collName string, filter domain.Filter) bson.D {
	return bson.D{
		{Key: "explain", Value: bson.D{
			{Key: "find", Value: collName},
			{Key: "filter", Value: filterToBSON(filter)},
		}},
		{Key: "verbosity", Value: "executionStats"},
	}
}

func (c *Collection) Drop(ctx context.Context) error {
	if err := c.coll.Drop(ctx); err != nil {
		return fmt.Errorf("drop %s: %w", c.Name(), err)
	}
	return nil
}

func decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]domain.Document, error) {
	defer cursor.Close(ctx)
	var results []bson.M
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode results: %w", err)
	}
	docs := make([]domain.Document, len(results))
	for i, r := range results {
		docs[i] = fromBSON(r)
	}
	return docs, nil
}
