package api

import (
	"sync"

	"go.uber.org/zap"

	"github.com/adfharrison1/bookreport/pkg/domain"
)

// statsProvider is implemented by stores that can report their own usage
type statsProvider interface {
	GetMemoryStats() map[string]interface{}
}

// Handler provides HTTP handlers over the report catalog and one collection
type Handler struct {
	store      domain.Store
	collection string
	logger     *zap.SugaredLogger

	// runs serialises catalog executions so reports never interleave
	runs sync.Mutex
}

// NewHandler creates a new API handler with dependency injection
func NewHandler(store domain.Store, collection string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		store:      store,
		collection: collection,
		logger:     logger.Sugar(),
	}
}

func (h *Handler) coll() domain.Collection {
	return h.store.Collection(h.collection)
}
