package domain

import (
	"fmt"
	"strings"
)

// IndexKey is one field of an index key pattern
type IndexKey struct {
	Field string
	Order SortOrder
}

// IndexModel describes an index to create
type IndexModel struct {
	Keys []IndexKey
}

// AscendingIndex builds an ascending index over the given fields, in order
func AscendingIndex(fields ...string) IndexModel {
	keys := make([]IndexKey, len(fields))
	for i, f := range fields {
		keys[i] = IndexKey{Field: f, Order: Ascending}
	}
	return IndexModel{Keys: keys}
}

// Name returns the conventional index name, e.g. author_1_published_year_1
func (m IndexModel) Name() string {
	parts := make([]string, 0, len(m.Keys)*2)
	for _, k := range m.Keys {
		parts = append(parts, k.Field, fmt.Sprintf("%d", k.Order))
	}
	return strings.Join(parts, "_")
}

// Fields returns the indexed field names in key order
func (m IndexModel) Fields() []string {
	out := make([]string, len(m.Keys))
	for i, k := range m.Keys {
		out[i] = k.Field
	}
	return out
}

// Validate validates the key pattern
func (m IndexModel) Validate() error {
	if len(m.Keys) == 0 {
		return fmt.Errorf("%w: index needs at least one key", ErrInvalidOptions)
	}
	seen := make(map[string]bool)
	for _, k := range m.Keys {
		if k.Field == "" {
			return fmt.Errorf("%w: index key with empty field", ErrInvalidOptions)
		}
		if seen[k.Field] {
			return fmt.Errorf("%w: field %s repeated in index", ErrInvalidOptions, k.Field)
		}
		seen[k.Field] = true
		if k.Order != Ascending && k.Order != Descending {
			return fmt.Errorf("%w: index order for %s must be 1 or -1", ErrInvalidOptions, k.Field)
		}
	}
	return nil
}
