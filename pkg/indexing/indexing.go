package indexing

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/adfharrison1/bookreport/pkg/domain"
)

// IDIndexName is the name of the index every collection gets on creation
const IDIndexName = "_id_"

// IndexEngine keeps the indexes of every collection. It is not safe for
// concurrent use; the storage engine serialises access.
type IndexEngine struct {
	indexes map[string]map[string]*Index // Collection name -> index name -> index
}

// NewIndexEngine creates a new index engine
func NewIndexEngine() *IndexEngine {
	return &IndexEngine{
		indexes: make(map[string]map[string]*Index),
	}
}

// Index stores a mapping from the encoded key of one or more fields to document IDs.
type Index struct {
	Name     string
	Fields   []string
	Inverted map[string][]string
}

// NewIndex creates an index over fields, in key order.
func NewIndex(name string, fields []string) *Index {
	return &Index{
		Name:     name,
		Fields:   append([]string(nil), fields...),
		Inverted: make(map[string][]string),
	}
}

// BuildIndex indexes all documents in a collection. Documents missing an
// indexed field are indexed under null for that field.
func (idx *Index) BuildIndex(collection *domain.DocumentSet) {
	idx.Inverted = make(map[string][]string)
	for docID, doc := range collection.Documents {
		key := idx.keyOf(doc)
		idx.Inverted[key] = append(idx.Inverted[key], docID)
	}
	for key := range idx.Inverted {
		sort.Strings(idx.Inverted[key])
	}
}

// Query returns document IDs whose indexed fields equal values exactly.
// values must cover every field of the index.
func (idx *Index) Query(values ...interface{}) []string {
	if len(values) != len(idx.Fields) {
		return nil
	}
	if docIDs, ok := idx.Inverted[EncodeKey(values...)]; ok {
		return docIDs
	}
	return nil
}

// QueryPrefix returns document IDs whose leading indexed fields equal
// prefix, along with the number of index keys examined.
func (idx *Index) QueryPrefix(prefix ...interface{}) ([]string, int) {
	if len(prefix) == len(idx.Fields) {
		ids := idx.Query(prefix...)
		return ids, len(ids)
	}
	want := EncodeKey(prefix...) + keySeparator
	var ids []string
	for key, docIDs := range idx.Inverted {
		if strings.HasPrefix(key, want) {
			ids = append(ids, docIDs...)
		}
	}
	sort.Strings(ids)
	return ids, len(ids)
}

// Len returns the number of distinct keys in the index
func (idx *Index) Len() int {
	return len(idx.Inverted)
}

// UpdateIndex updates index after an insert/update/delete operation.
func (idx *Index) UpdateIndex(docID string, oldDoc, newDoc domain.Document) {
	// Remove old entry
	if oldDoc != nil {
		oldKey := idx.keyOf(oldDoc)
		docList := idx.Inverted[oldKey]
		for i, id := range docList {
			if id == docID {
				idx.Inverted[oldKey] = append(docList[:i], docList[i+1:]...)
				break
			}
		}
		if len(idx.Inverted[oldKey]) == 0 {
			delete(idx.Inverted, oldKey)
		}
	}
	// Add new entry, keeping IDs ordered
	if newDoc != nil {
		newKey := idx.keyOf(newDoc)
		docList := idx.Inverted[newKey]
		pos := sort.SearchStrings(docList, docID)
		docList = append(docList, "")
		copy(docList[pos+1:], docList[pos:])
		docList[pos] = docID
		idx.Inverted[newKey] = docList
	}
}

func (idx *Index) keyOf(doc domain.Document) string {
	values := make([]interface{}, len(idx.Fields))
	for i, f := range idx.Fields {
		values[i] = doc[f]
	}
	return EncodeKey(values...)
}

const keySeparator = "\x00"

// EncodeKey renders values as an index key. Numbers of any width encode
// identically so 1900 and 1900.0 share a key.
func EncodeKey(values ...interface{}) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = encodeValue(v)
	}
	return strings.Join(parts, keySeparator)
}

func encodeValue(v interface{}) string {
	if v == nil {
		return "z"
	}
	if n, ok := domain.ToFloat64(v); ok {
		return "n" + strconv.FormatFloat(n, 'g', -1, 64)
	}
	switch t := v.(type) {
	case string:
		return "s" + strconv.Quote(t)
	case bool:
		return "b" + strconv.FormatBool(t)
	default:
		return "o" + fmt.Sprintf("%v", t)
	}
}

// CreateIndex registers an empty index in a collection. It fails when an
// index with the same name already exists.
func (ie *IndexEngine) CreateIndex(collectionName, indexName string, fields []string) error {
	// Initialize indexes map for this collection if it doesn't exist
	if ie.indexes[collectionName] == nil {
		ie.indexes[collectionName] = make(map[string]*Index)
	}

	// Check if index already exists
	if _, exists := ie.indexes[collectionName][indexName]; exists {
		return fmt.Errorf("%w: index %s already exists in collection %s", domain.ErrIndexConflict, indexName, collectionName)
	}

	ie.indexes[collectionName][indexName] = NewIndex(indexName, fields)
	return nil
}

// DropIndex removes an index from a collection
func (ie *IndexEngine) DropIndex(collectionName, indexName string) error {
	if ie.indexes[collectionName] == nil {
		return fmt.Errorf("no indexes exist for collection %s", collectionName)
	}

	if _, exists := ie.indexes[collectionName][indexName]; !exists {
		return fmt.Errorf("index %s does not exist in collection %s", indexName, collectionName)
	}

	delete(ie.indexes[collectionName], indexName)
	return nil
}

// DropCollection forgets every index of a collection
func (ie *IndexEngine) DropCollection(collectionName string) {
	delete(ie.indexes, collectionName)
}

// GetIndexes returns all index names for a collection, sorted
func (ie *IndexEngine) GetIndexes(collectionName string) []string {
	collectionIndexes, exists := ie.indexes[collectionName]
	if !exists {
		return []string{}
	}

	indexNames := make([]string, 0, len(collectionIndexes))
	for name := range collectionIndexes {
		indexNames = append(indexNames, name)
	}
	sort.Strings(indexNames)
	return indexNames
}

// GetIndex returns an index of a collection by name
func (ie *IndexEngine) GetIndex(collectionName, indexName string) (*Index, bool) {
	if collectionIndexes, exists := ie.indexes[collectionName]; exists {
		if index, exists := collectionIndexes[indexName]; exists {
			return index, true
		}
	}
	return nil, false
}

// BuildIndexForCollection (re)builds an index from the documents of a collection
func (ie *IndexEngine) BuildIndexForCollection(collectionName, indexName string, collection *domain.DocumentSet) error {
	index, exists := ie.GetIndex(collectionName, indexName)
	if !exists {
		return fmt.Errorf("index %s does not exist in collection %s", indexName, collectionName)
	}
	index.BuildIndex(collection)
	return nil
}

// UpdateIndexForDocument updates every index of a collection when a document changes
func (ie *IndexEngine) UpdateIndexForDocument(collectionName, docID string, oldDoc, newDoc domain.Document) {
	if collectionIndexes, exists := ie.indexes[collectionName]; exists {
		for _, index := range collectionIndexes {
			index.UpdateIndex(docID, oldDoc, newDoc)
		}
	}
}

// BestIndex picks the index whose leading fields are covered by the longest
// run of equality constraints. It returns the index and the values of that
// prefix, or false when no index applies.
func (ie *IndexEngine) BestIndex(collectionName string, equalities map[string]interface{}) (*Index, []interface{}, bool) {
	var (
		best       *Index
		bestPrefix []interface{}
	)
	for _, name := range ie.GetIndexes(collectionName) {
		index := ie.indexes[collectionName][name]
		var prefix []interface{}
		for _, field := range index.Fields {
			v, ok := equalities[field]
			if !ok {
				break
			}
			prefix = append(prefix, v)
		}
		if len(prefix) == 0 {
			continue
		}
		if best == nil || len(prefix) > len(bestPrefix) ||
			(len(prefix) == len(bestPrefix) && len(index.Fields) < len(best.Fields)) {
			best, bestPrefix = index, prefix
		}
	}
	return best, bestPrefix, best != nil
}

// ExportDefinitions returns collection -> index name -> fields, for persistence
func (ie *IndexEngine) ExportDefinitions() map[string]map[string][]string {
	out := make(map[string]map[string][]string, len(ie.indexes))
	for coll, indexes := range ie.indexes {
		out[coll] = make(map[string][]string, len(indexes))
		for name, index := range indexes {
			out[coll][name] = append([]string(nil), index.Fields...)
		}
	}
	return out
}
