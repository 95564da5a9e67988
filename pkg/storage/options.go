package storage

import (
	"time"

	"go.uber.org/zap"
)

type StorageOption func(*StorageEngine)

// WithDataFile sets the snapshot file loaded by Open and written on Close
func WithDataFile(path string) StorageOption {
	return func(engine *StorageEngine) {
		engine.dataFile = path
	}
}

// WithMaxDocuments caps the number of documents a single collection may hold (0 = unlimited)
func WithMaxDocuments(n int) StorageOption {
	return func(engine *StorageEngine) {
		engine.maxDocuments = n
	}
}

// WithBackgroundSave snapshots dirty collections every interval
func WithBackgroundSave(interval time.Duration) StorageOption {
	return func(engine *StorageEngine) {
		engine.backgroundSave = interval > 0
		engine.saveInterval = interval
	}
}

// WithLogger sets the logger used for load/save and background messages
func WithLogger(logger *zap.Logger) StorageOption {
	return func(engine *StorageEngine) {
		if logger != nil {
			engine.logger = logger.Sugar()
		}
	}
}
