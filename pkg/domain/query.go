package domain

import (
	"fmt"
	"strings"
)

// Op is a comparison operator in a filter condition
type Op string

const (
	OpEq  Op = "$eq"
	OpNe  Op = "$ne"
	OpGt  Op = "$gt"
	OpGte Op = "$gte"
	OpLt  Op = "$lt"
	OpLte Op = "$lte"
)

// Valid reports whether the operator is supported by the stores
func (o Op) Valid() bool {
	switch o {
	case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte:
		return true
	}
	return false
}

// Condition compares one document field against a literal value
type Condition struct {
	Field string
	Op    Op
	Value interface{}
}

func (c Condition) String() string {
	if c.Op == OpEq {
		return fmt.Sprintf("%s = %v", c.Field, c.Value)
	}
	return fmt.Sprintf("%s %s %v", c.Field, c.Op, c.Value)
}

// Filter is a conjunction of conditions. An empty filter matches every document.
type Filter []Condition

// Eq builds an equality condition
func Eq(field string, value interface{}) Condition {
	return Condition{Field: field, Op: OpEq, Value: value}
}

// Gt builds a strictly-greater-than condition
func Gt(field string, value interface{}) Condition {
	return Condition{Field: field, Op: OpGt, Value: value}
}

// Where builds a filter from conditions
func Where(conds ...Condition) Filter {
	return Filter(conds)
}

// Validate checks every condition names a field and a supported operator
func (f Filter) Validate() error {
	for _, c := range f {
		if c.Field == "" {
			return fmt.Errorf("%w: condition with empty field", ErrInvalidFilter)
		}
		if !c.Op.Valid() {
			return fmt.Errorf("%w: unsupported operator %q on field %s", ErrInvalidFilter, c.Op, c.Field)
		}
	}
	return nil
}

// Equalities returns the fields constrained by equality, mapped to their values
func (f Filter) Equalities() map[string]interface{} {
	out := make(map[string]interface{})
	for _, c := range f {
		if c.Op == OpEq {
			out[c.Field] = c.Value
		}
	}
	return out
}

func (f Filter) String() string {
	if len(f) == 0 {
		return "{}"
	}
	parts := make([]string, len(f))
	for i, c := range f {
		parts[i] = c.String()
	}
	return strings.Join(parts, " AND ")
}

// SortOrder is the direction of a sort key
type SortOrder int

const (
	Ascending  SortOrder = 1
	Descending SortOrder = -1
)

// SortKey orders results by one field
type SortKey struct {
	Field string
	Order SortOrder
}

// Asc sorts ascending by field
func Asc(field string) SortKey { return SortKey{Field: field, Order: Ascending} }

// Desc sorts descending by field
func Desc(field string) SortKey { return SortKey{Field: field, Order: Descending} }

// Projection selects a subset of fields to return
type Projection struct {
	Include   []string
	ExcludeID bool
}

// IsZero reports whether the projection returns whole documents
func (p *Projection) IsZero() bool {
	return p == nil || (len(p.Include) == 0 && !p.ExcludeID)
}

// FindOptions shapes the result of a find
type FindOptions struct {
	Projection *Projection
	Sort       []SortKey
	Skip       int64
	Limit      int64 // 0 means no limit
}

// Validate validates find options
func (o *FindOptions) Validate() error {
	if o == nil {
		return nil
	}
	if o.Skip < 0 {
		return fmt.Errorf("%w: skip cannot be negative", ErrInvalidOptions)
	}
	if o.Limit < 0 {
		return fmt.Errorf("%w: limit cannot be negative", ErrInvalidOptions)
	}
	for _, k := range o.Sort {
		if k.Field == "" {
			return fmt.Errorf("%w: sort key with empty field", ErrInvalidOptions)
		}
		if k.Order != Ascending && k.Order != Descending {
			return fmt.Errorf("%w: sort order for %s must be 1 or -1", ErrInvalidOptions, k.Field)
		}
	}
	return nil
}
