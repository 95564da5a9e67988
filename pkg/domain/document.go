package domain

import "fmt"

// IDField is the identity field managed by every store
const IDField = "_id"

// Document represents a document in the database
type Document map[string]interface{}

// Clone returns a shallow copy of the document
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// ID returns the identity field rendered as a string
func (d Document) ID() string {
	v, ok := d[IDField]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", v)
}

// DocumentSet holds the documents of one stored collection keyed by _id
type DocumentSet struct {
	Name      string              `json:"name"`
	Documents map[string]Document `json:"documents"`
}

// NewDocumentSet creates an empty document set
func NewDocumentSet(name string) *DocumentSet {
	return &DocumentSet{
		Name:      name,
		Documents: make(map[string]Document),
	}
}
