package storage

import (
	"fmt"
	"sort"
	"time"

	"github.com/adfharrison1/bookreport/pkg/domain"
	"github.com/adfharrison1/bookreport/pkg/indexing"
)

// GetCollection returns a collection by name
func (se *StorageEngine) GetCollection(collName string) (*domain.DocumentSet, error) {
	se.mu.RLock()
	defer se.mu.RUnlock()
	return se.getCollectionInternal(collName)
}

// getCollectionInternal looks up a collection without locking
func (se *StorageEngine) getCollectionInternal(collName string) (*domain.DocumentSet, error) {
	collection, exists := se.data[collName]
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, collName)
	}
	return collection, nil
}

// CreateCollection creates a new collection
func (se *StorageEngine) CreateCollection(collName string) error {
	se.mu.Lock()
	defer se.mu.Unlock()

	if collName == "" {
		return fmt.Errorf("collection name cannot be empty")
	}

	if _, exists := se.data[collName]; exists {
		return fmt.Errorf("collection %s already exists", collName)
	}

	se.createCollectionInternal(collName)
	return nil
}

// createCollectionInternal registers an empty collection with its _id index.
// The caller holds the write lock.
func (se *StorageEngine) createCollectionInternal(collName string) *domain.DocumentSet {
	collection := domain.NewDocumentSet(collName)
	se.data[collName] = collection
	se.collections[collName] = &CollectionInfo{
		Name:         collName,
		State:        CollectionStateDirty,
		LastModified: time.Now(),
	}
	if _, exists := se.indexEngine.GetIndex(collName, indexing.IDIndexName); !exists {
		_ = se.indexEngine.CreateIndex(collName, indexing.IDIndexName, []string{domain.IDField})
	}
	return collection
}

// DropCollection removes a collection with its documents and indexes.
// Dropping a missing collection is not an error.
func (se *StorageEngine) DropCollection(collName string) error {
	se.mu.Lock()
	defer se.mu.Unlock()

	if se.closed {
		return domain.ErrStoreClosed
	}

	if _, exists := se.data[collName]; !exists {
		return nil
	}
	delete(se.data, collName)
	delete(se.idCounters, collName)
	se.indexEngine.DropCollection(collName)
	// keep a dirty tombstone so the next snapshot drops it too
	se.collections[collName] = &CollectionInfo{
		Name:         collName,
		State:        CollectionStateDirty,
		LastModified: time.Now(),
	}
	return nil
}

// ListCollections returns the names of all collections, sorted
func (se *StorageEngine) ListCollections() []string {
	se.mu.RLock()
	defer se.mu.RUnlock()
	names := make([]string, 0, len(se.data))
	for name := range se.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Info returns a copy of a collection's metadata
func (se *StorageEngine) Info(collName string) (CollectionInfo, error) {
	se.mu.RLock()
	defer se.mu.RUnlock()
	if _, exists := se.data[collName]; !exists {
		return CollectionInfo{}, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, collName)
	}
	return *se.collections[collName], nil
}

// markDirty records a write against a collection. The caller holds the write lock.
func (se *StorageEngine) markDirty(collName string, delta int64) {
	if info, ok := se.collections[collName]; ok {
		info.State = CollectionStateDirty
		info.DocumentCount += delta
		info.LastModified = time.Now()
	}
}
