package storage

import (
	"fmt"
	"sort"

	"github.com/adfharrison1/bookreport/pkg/domain"
)

// MatchesFilter checks if a document satisfies every condition of the filter
func MatchesFilter(doc domain.Document, filter domain.Filter) bool {
	for _, cond := range filter {
		actual, exists := doc[cond.Field]
		if !MatchesCondition(actual, exists, cond) {
			return false
		}
	}
	return true
}

// MatchesCondition evaluates one condition against a field value. A missing
// field equals null; ordering operators only compare values of the same
// type class, so "1900" is never greater than 1800.
func MatchesCondition(actual interface{}, exists bool, cond domain.Condition) bool {
	if !exists {
		actual = nil
	}
	switch cond.Op {
	case domain.OpEq:
		return ValuesMatch(actual, cond.Value)
	case domain.OpNe:
		return !ValuesMatch(actual, cond.Value)
	}

	if actual == nil || cond.Value == nil || typeRank(actual) != typeRank(cond.Value) {
		return false
	}
	c := CompareValues(actual, cond.Value)
	switch cond.Op {
	case domain.OpGt:
		return c > 0
	case domain.OpGte:
		return c >= 0
	case domain.OpLt:
		return c < 0
	case domain.OpLte:
		return c <= 0
	}
	return false
}

// ValuesMatch compares two values for equality, treating all numeric widths alike
func ValuesMatch(actual, expected interface{}) bool {
	if actual == nil && expected == nil {
		return true
	}
	if actual == nil || expected == nil {
		return false
	}
	if typeRank(actual) != typeRank(expected) {
		return false
	}
	return CompareValues(actual, expected) == 0
}

// ToFloat64 converts various numeric types to float64 for comparison
func ToFloat64(value interface{}) (float64, bool) {
	return domain.ToFloat64(value)
}

// typeRank orders type classes: null < numbers < strings < booleans < other
func typeRank(v interface{}) int {
	if v == nil {
		return 0
	}
	if _, ok := ToFloat64(v); ok {
		return 1
	}
	switch v.(type) {
	case string:
		return 2
	case bool:
		return 3
	}
	return 4
}

// CompareValues returns -1, 0 or 1 ordering a against b. Values of different
// type classes order by class.
func CompareValues(a, b interface{}) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch ra {
	case 0:
		return 0
	case 1:
		fa, _ := ToFloat64(a)
		fb, _ := ToFloat64(b)
		return compareOrdered(fa, fb)
	case 2:
		return compareOrdered(a.(string), b.(string))
	case 3:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		default:
			return 1
		}
	}
	return compareOrdered(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
}

func compareOrdered[T float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// SortDocuments stably sorts docs by the given keys. Missing fields sort as null.
func SortDocuments(docs []domain.Document, keys []domain.SortKey) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, k := range keys {
			c := CompareValues(docs[i][k.Field], docs[j][k.Field])
			if c == 0 {
				continue
			}
			if k.Order == domain.Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// ApplyProjection returns a new document holding only the projected fields
func ApplyProjection(doc domain.Document, p *domain.Projection) domain.Document {
	if p.IsZero() {
		return doc.Clone()
	}
	var out domain.Document
	if len(p.Include) == 0 {
		out = doc.Clone()
	} else {
		out = make(domain.Document, len(p.Include)+1)
		for _, f := range p.Include {
			if v, ok := doc[f]; ok {
				out[f] = v
			}
		}
		if v, ok := doc[domain.IDField]; ok {
			out[domain.IDField] = v
		}
	}
	if p.ExcludeID {
		delete(out, domain.IDField)
	}
	return out
}

// paginate applies skip and limit to an already ordered slice
func paginate(docs []domain.Document, skip, limit int64) []domain.Document {
	if skip >= int64(len(docs)) {
		return []domain.Document{}
	}
	docs = docs[skip:]
	if limit > 0 && limit < int64(len(docs)) {
		docs = docs[:limit]
	}
	return docs
}
