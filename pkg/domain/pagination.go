package domain

import "fmt"

// PaginationOptions defines limit/offset pagination parameters
type PaginationOptions struct {
	Limit    int64 `json:"limit,omitempty"`
	Offset   int64 `json:"offset,omitempty"`
	MaxLimit int64 `json:"max_limit,omitempty"` // Maximum allowed limit
}

// DefaultPaginationOptions returns default pagination settings
func DefaultPaginationOptions() *PaginationOptions {
	return &PaginationOptions{
		Limit:    50,
		MaxLimit: 1000,
	}
}

// Page returns the options for the 1-based page number of the given size
func Page(number, size int64) *PaginationOptions {
	if number < 1 {
		number = 1
	}
	return &PaginationOptions{
		Limit:    size,
		Offset:   (number - 1) * size,
		MaxLimit: 1000,
	}
}

// Validate validates pagination options
func (po *PaginationOptions) Validate() error {
	if po.Limit < 0 {
		return fmt.Errorf("%w: limit cannot be negative", ErrInvalidOptions)
	}
	if po.Offset < 0 {
		return fmt.Errorf("%w: offset cannot be negative", ErrInvalidOptions)
	}
	if po.MaxLimit > 0 && po.Limit > po.MaxLimit {
		return fmt.Errorf("%w: limit %d exceeds maximum %d", ErrInvalidOptions, po.Limit, po.MaxLimit)
	}
	return nil
}

// FindOptions converts the page into find options. The identity field is
// always appended as the final sort key so that pages are reproducible
// regardless of the store's natural order.
func (po *PaginationOptions) FindOptions(sort ...SortKey) *FindOptions {
	keys := make([]SortKey, 0, len(sort)+1)
	hasID := false
	for _, k := range sort {
		keys = append(keys, k)
		if k.Field == IDField {
			hasID = true
		}
	}
	if !hasID {
		keys = append(keys, Asc(IDField))
	}
	return &FindOptions{
		Sort:  keys,
		Skip:  po.Offset,
		Limit: po.Limit,
	}
}
