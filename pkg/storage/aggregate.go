package storage

import (
	"fmt"
	"math"

	"github.com/adfharrison1/bookreport/pkg/domain"
	"github.com/adfharrison1/bookreport/pkg/indexing"
)

// Aggregate runs a pipeline over the documents of a collection in natural
// order. A missing collection yields no documents.
func (se *StorageEngine) Aggregate(collName string, pipeline domain.Pipeline) ([]domain.Document, error) {
	if err := pipeline.Validate(); err != nil {
		return nil, err
	}

	se.mu.RLock()
	if se.closed {
		se.mu.RUnlock()
		return nil, domain.ErrStoreClosed
	}
	stored, _ := se.scan(collName, nil)
	docs := make([]domain.Document, len(stored))
	for i, doc := range stored {
		docs[i] = doc.Clone()
	}
	se.mu.RUnlock()

	return RunPipeline(docs, pipeline)
}

// RunPipeline applies each stage in turn to docs
func RunPipeline(docs []domain.Document, pipeline domain.Pipeline) ([]domain.Document, error) {
	var err error
	for i, stage := range pipeline {
		switch s := stage.(type) {
		case domain.GroupStage:
			docs, err = groupDocuments(docs, s)
		case domain.SortStage:
			SortDocuments(docs, s.Keys)
		case domain.LimitStage:
			docs = paginate(docs, 0, s.N)
		case domain.ProjectStage:
			docs = projectDocuments(docs, s)
		default:
			err = fmt.Errorf("%w: unsupported stage %s", domain.ErrInvalidPipeline, stage.StageName())
		}
		if err != nil {
			return nil, fmt.Errorf("stage %d (%s): %w", i, stage.StageName(), err)
		}
	}
	return docs, nil
}

type groupState struct {
	key    interface{}
	count  int64
	sums   []float64
	nums   []int64 // numeric values seen per accumulator
	floats []bool  // whether a non-integral value was summed
}

// groupDocuments emits one document per distinct key, in order of first appearance
func groupDocuments(docs []domain.Document, s domain.GroupStage) ([]domain.Document, error) {
	var order []string
	groups := make(map[string]*groupState)

	for _, doc := range docs {
		key, err := groupKey(doc, s.By)
		if err != nil {
			return nil, err
		}
		encoded := indexing.EncodeKey(key)
		g, ok := groups[encoded]
		if !ok {
			g = &groupState{
				key:    key,
				sums:   make([]float64, len(s.Accumulators)),
				nums:   make([]int64, len(s.Accumulators)),
				floats: make([]bool, len(s.Accumulators)),
			}
			groups[encoded] = g
			order = append(order, encoded)
		}
		g.count++
		for i, acc := range s.Accumulators {
			if acc.Op == domain.AccCount {
				continue
			}
			v, ok := ToFloat64(doc[acc.Field])
			if !ok {
				continue
			}
			g.sums[i] += v
			g.nums[i]++
			if !isIntegral(doc[acc.Field]) {
				g.floats[i] = true
			}
		}
	}

	out := make([]domain.Document, 0, len(order))
	for _, encoded := range order {
		g := groups[encoded]
		doc := domain.Document{domain.IDField: g.key}
		for i, acc := range s.Accumulators {
			switch acc.Op {
			case domain.AccCount:
				doc[acc.Name] = g.count
			case domain.AccSum:
				if g.floats[i] {
					doc[acc.Name] = g.sums[i]
				} else {
					doc[acc.Name] = int64(g.sums[i])
				}
			case domain.AccAvg:
				if g.nums[i] == 0 {
					doc[acc.Name] = nil
				} else {
					doc[acc.Name] = g.sums[i] / float64(g.nums[i])
				}
			}
		}
		out = append(out, doc)
	}
	return out, nil
}

// groupKey extracts the grouping value of a document. Bucketed keys are
// floor(value / width) as an integer; null and missing values group as null.
func groupKey(doc domain.Document, key domain.GroupKey) (interface{}, error) {
	v := doc[key.Field]
	if key.Bucket == 0 || v == nil {
		return v, nil
	}
	n, ok := ToFloat64(v)
	if !ok {
		return nil, fmt.Errorf("%w: cannot bucket non-numeric %s value %v", domain.ErrInvalidPipeline, key.Field, v)
	}
	return DecadeIndex(n, key.Bucket), nil
}

// DecadeIndex returns floor(n / width). With width 10, 1955 -> 195 and
// 1960 -> 196; negative values floor away from zero.
func DecadeIndex(n float64, width int) int64 {
	return int64(math.Floor(n / float64(width)))
}

// projectDocuments reshapes each document. Listing fields or computed
// fields selects inclusion mode; a bare ExcludeID only drops _id.
func projectDocuments(docs []domain.Document, s domain.ProjectStage) []domain.Document {
	out := make([]domain.Document, len(docs))
	for i, doc := range docs {
		if len(s.Fields) == 0 && len(s.Computed) == 0 {
			out[i] = ApplyProjection(doc, &domain.Projection{ExcludeID: s.ExcludeID})
			continue
		}

		projected := make(domain.Document, len(s.Fields)+len(s.Computed)+1)
		for _, f := range s.Fields {
			if v, ok := doc[f]; ok {
				projected[f] = v
			}
		}
		if v, ok := doc[domain.IDField]; ok && !s.ExcludeID {
			projected[domain.IDField] = v
		}
		for _, c := range s.Computed {
			v, ok := ToFloat64(doc[c.Field])
			if !ok {
				projected[c.Name] = nil
				continue
			}
			product := v * c.Factor
			if isIntegral(doc[c.Field]) && product == math.Trunc(product) {
				projected[c.Name] = int64(product)
			} else {
				projected[c.Name] = product
			}
		}
		out[i] = projected
	}
	return out
}

func isIntegral(v interface{}) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}
