package storage

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/adfharrison1/bookreport/pkg/domain"
	"github.com/adfharrison1/bookreport/pkg/indexing"
)

// Insert inserts a document into a collection, creating the collection if
// needed, and returns the document ID. A caller-supplied _id is kept.
func (se *StorageEngine) Insert(collName string, doc domain.Document) (string, error) {
	ids, err := se.InsertMany(collName, []domain.Document{doc})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// InsertMany inserts documents in order. Either all documents are inserted or none.
func (se *StorageEngine) InsertMany(collName string, docs []domain.Document) ([]string, error) {
	se.mu.Lock()
	defer se.mu.Unlock()

	if se.closed {
		return nil, domain.ErrStoreClosed
	}

	collection, err := se.getCollectionInternal(collName)
	if err != nil {
		collection = se.createCollectionInternal(collName)
	}

	if se.maxDocuments > 0 && len(collection.Documents)+len(docs) > se.maxDocuments {
		return nil, fmt.Errorf("collection %s would exceed %d documents", collName, se.maxDocuments)
	}

	// Validate every supplied ID before touching the collection
	pending := make(map[string]bool, len(docs))
	for _, doc := range docs {
		if id := doc.ID(); id != "" {
			if _, exists := collection.Documents[id]; exists || pending[id] {
				return nil, fmt.Errorf("duplicate key: document with id %s already exists in collection %s", id, collName)
			}
			pending[id] = true
		}
	}

	ids := make([]string, 0, len(docs))
	for _, in := range docs {
		doc := in.Clone()
		docID := doc.ID()
		if docID == "" {
			docID = se.nextID(collName)
		} else {
			se.observeID(collName, docID)
		}
		doc[domain.IDField] = docID

		// Update indexes before inserting (oldDoc is nil for new documents)
		se.updateIndexes(collName, docID, nil, doc)
		collection.Documents[docID] = doc
		ids = append(ids, docID)
	}

	se.markDirty(collName, int64(len(ids)))
	return ids, nil
}

// nextID returns the next generated ID of a collection. The caller holds the write lock.
func (se *StorageEngine) nextID(collName string) string {
	for {
		se.idCounters[collName]++
		id := formatID(se.idCounters[collName])
		if _, exists := se.data[collName].Documents[id]; !exists {
			return id
		}
	}
}

// observeID advances the ID counter past a generated-looking ID
func (se *StorageEngine) observeID(collName, docID string) {
	if n, ok := parseID(docID); ok && n > se.idCounters[collName] {
		se.idCounters[collName] = n
	}
}

func formatID(n int64) string {
	return fmt.Sprintf("%024x", n)
}

func parseID(id string) (int64, bool) {
	if len(id) != 24 {
		return 0, false
	}
	n, err := strconv.ParseInt(id, 16, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// GetById retrieves a specific document by its ID
func (se *StorageEngine) GetById(collName, docId string) (domain.Document, error) {
	se.mu.RLock()
	defer se.mu.RUnlock()

	collection, err := se.getCollectionInternal(collName)
	if err != nil {
		return nil, err
	}

	doc, exists := collection.Documents[docId]
	if !exists {
		return nil, fmt.Errorf("document with id %s not found in collection %s", docId, collName)
	}

	return doc.Clone(), nil
}

// Find returns copies of the documents matching filter, ordered by the sort
// keys (natural _id order otherwise), then skipped, limited and projected.
// A missing collection yields no documents.
func (se *StorageEngine) Find(collName string, filter domain.Filter, opts *domain.FindOptions) ([]domain.Document, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &domain.FindOptions{}
	}

	se.mu.RLock()
	defer se.mu.RUnlock()

	if se.closed {
		return nil, domain.ErrStoreClosed
	}

	matched, _ := se.scan(collName, filter)
	SortDocuments(matched, opts.Sort)
	matched = paginate(matched, opts.Skip, opts.Limit)

	results := make([]domain.Document, len(matched))
	for i, doc := range matched {
		results[i] = ApplyProjection(doc, opts.Projection)
	}
	return results, nil
}

// UpdateOne sets fields on the first document, in natural order, matching filter
func (se *StorageEngine) UpdateOne(collName string, filter domain.Filter, set domain.Document) (domain.UpdateResult, error) {
	if err := filter.Validate(); err != nil {
		return domain.UpdateResult{}, err
	}
	if _, ok := set[domain.IDField]; ok {
		return domain.UpdateResult{}, fmt.Errorf("%w: the _id field cannot be updated", domain.ErrInvalidOptions)
	}

	se.mu.Lock()
	defer se.mu.Unlock()

	if se.closed {
		return domain.UpdateResult{}, domain.ErrStoreClosed
	}

	matched, _ := se.scan(collName, filter)
	if len(matched) == 0 {
		return domain.UpdateResult{}, nil
	}

	doc := matched[0]
	docID := doc.ID()
	oldDoc := doc.Clone()

	modified := false
	for key, value := range set {
		if old, exists := doc[key]; !exists || !ValuesMatch(old, value) {
			doc[key] = value
			modified = true
		}
	}
	if !modified {
		return domain.UpdateResult{Matched: 1}, nil
	}

	se.updateIndexes(collName, docID, oldDoc, doc)
	se.markDirty(collName, 0)
	return domain.UpdateResult{Matched: 1, Modified: 1}, nil
}

// DeleteOne removes the first document, in natural order, matching filter
func (se *StorageEngine) DeleteOne(collName string, filter domain.Filter) (domain.DeleteResult, error) {
	if err := filter.Validate(); err != nil {
		return domain.DeleteResult{}, err
	}

	se.mu.Lock()
	defer se.mu.Unlock()

	if se.closed {
		return domain.DeleteResult{}, domain.ErrStoreClosed
	}

	matched, _ := se.scan(collName, filter)
	if len(matched) == 0 {
		return domain.DeleteResult{}, nil
	}

	doc := matched[0]
	docID := doc.ID()

	// Update indexes before deleting (newDoc is nil for deletions)
	se.updateIndexes(collName, docID, doc, nil)
	delete(se.data[collName].Documents, docID)
	se.markDirty(collName, -1)

	return domain.DeleteResult{Deleted: 1}, nil
}

// scanStats describes how a scan located its documents
type scanStats struct {
	Index        *indexing.Index
	KeysExamined int
	DocsExamined int
}

// scan returns the stored documents matching filter in natural order. It
// uses the index with the longest equality prefix when one exists. The
// caller holds the lock; returned documents are the stored instances.
func (se *StorageEngine) scan(collName string, filter domain.Filter) ([]domain.Document, scanStats) {
	var stats scanStats
	collection, exists := se.data[collName]
	if !exists {
		return []domain.Document{}, stats
	}

	var candidateIDs []string
	if index, prefix, ok := se.indexEngine.BestIndex(collName, filter.Equalities()); ok {
		candidateIDs, stats.KeysExamined = index.QueryPrefix(prefix...)
		stats.Index = index
	} else {
		candidateIDs = make([]string, 0, len(collection.Documents))
		for id := range collection.Documents {
			candidateIDs = append(candidateIDs, id)
		}
		sort.Strings(candidateIDs)
	}

	matched := make([]domain.Document, 0, len(candidateIDs))
	for _, docID := range candidateIDs {
		doc, ok := collection.Documents[docID]
		if !ok {
			continue
		}
		stats.DocsExamined++
		if MatchesFilter(doc, filter) {
			matched = append(matched, doc)
		}
	}
	return matched, stats
}
