package storage

import (
	"fmt"

	"github.com/adfharrison1/bookreport/pkg/domain"
	"github.com/adfharrison1/bookreport/pkg/indexing"
)

// CreateIndex creates an index on a collection and returns its name. The
// collection is created if missing. Creating an index whose key pattern
// already exists under the same name is a no-op. Indexes answer equality
// lookups only, so every key must be ascending.
func (se *StorageEngine) CreateIndex(collName string, model domain.IndexModel) (string, error) {
	if err := model.Validate(); err != nil {
		return "", err
	}
	for _, k := range model.Keys {
		if k.Order != domain.Ascending {
			return "", fmt.Errorf("%w: embedded indexes are ascending only, %s is descending", domain.ErrInvalidOptions, k.Field)
		}
	}
	name := model.Name()
	fields := model.Fields()

	se.mu.Lock()
	defer se.mu.Unlock()

	if se.closed {
		return "", domain.ErrStoreClosed
	}

	collection, err := se.getCollectionInternal(collName)
	if err != nil {
		collection = se.createCollectionInternal(collName)
	}

	if existing, exists := se.indexEngine.GetIndex(collName, name); exists {
		if !sameFields(existing.Fields, fields) {
			return "", fmt.Errorf("%w: index %s exists with a different key pattern", domain.ErrIndexConflict, name)
		}
		return name, nil
	}

	if err := se.indexEngine.CreateIndex(collName, name, fields); err != nil {
		return "", err
	}
	if err := se.indexEngine.BuildIndexForCollection(collName, name, collection); err != nil {
		return "", err
	}
	se.markDirty(collName, 0)
	return name, nil
}

// DropIndex removes an index from a collection
func (se *StorageEngine) DropIndex(collName, indexName string) error {
	if indexName == indexing.IDIndexName {
		return fmt.Errorf("cannot drop the %s index", indexing.IDIndexName)
	}
	se.mu.Lock()
	defer se.mu.Unlock()
	if err := se.indexEngine.DropIndex(collName, indexName); err != nil {
		return err
	}
	se.markDirty(collName, 0)
	return nil
}

// GetIndexes returns all index names for a collection
func (se *StorageEngine) GetIndexes(collName string) ([]string, error) {
	se.mu.RLock()
	defer se.mu.RUnlock()
	if _, err := se.getCollectionInternal(collName); err != nil {
		return nil, err
	}
	return se.indexEngine.GetIndexes(collName), nil
}

// updateIndexes updates all indexes for a collection when a document changes
func (se *StorageEngine) updateIndexes(collName, docID string, oldDoc, newDoc domain.Document) {
	se.indexEngine.UpdateIndexForDocument(collName, docID, oldDoc, newDoc)
}

func sameFields(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
