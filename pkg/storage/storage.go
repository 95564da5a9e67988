package storage

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/adfharrison1/bookreport/pkg/domain"
	"github.com/adfharrison1/bookreport/pkg/indexing"
)

// StorageEngine is an in-process document store persisted to a single
// snapshot file. It is safe for concurrent use.
type StorageEngine struct {
	mu          sync.RWMutex
	collections map[string]*CollectionInfo // Collection metadata
	data        map[string]*domain.DocumentSet
	indexEngine *indexing.IndexEngine
	closed      bool

	// Configuration
	dataFile       string
	maxDocuments   int
	backgroundSave bool
	saveInterval   time.Duration
	logger         *zap.SugaredLogger

	// Background workers
	backgroundWg sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once

	// Per-collection ID counters; IDs are 24 hex digits so that _id order
	// equals insertion order
	idCounters map[string]int64
}

// NewStorageEngine creates a new storage engine
func NewStorageEngine(options ...StorageOption) *StorageEngine {
	engine := &StorageEngine{
		collections:  make(map[string]*CollectionInfo),
		data:         make(map[string]*domain.DocumentSet),
		indexEngine:  indexing.NewIndexEngine(),
		saveInterval: 5 * time.Minute,
		logger:       zap.NewNop().Sugar(),
		stopChan:     make(chan struct{}),
		idCounters:   make(map[string]int64),
	}

	// Apply options
	for _, option := range options {
		option(engine)
	}

	return engine
}

// DataFile returns the snapshot path, empty for a purely in-memory engine
func (se *StorageEngine) DataFile() string {
	return se.dataFile
}

// GetIndexEngine returns the index engine instance
func (se *StorageEngine) GetIndexEngine() *indexing.IndexEngine {
	return se.indexEngine
}
