package storage

import (
	"time"

	"github.com/adfharrison1/bookreport/pkg/domain"
)

// Explain runs filter and reports the chosen plan with execution statistics
// instead of the matching documents
func (se *StorageEngine) Explain(collName string, filter domain.Filter) (domain.Document, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	se.mu.RLock()
	defer se.mu.RUnlock()

	if se.closed {
		return nil, domain.ErrStoreClosed
	}

	start := time.Now()
	matched, stats := se.scan(collName, filter)
	elapsed := time.Since(start)

	var winningPlan domain.Document
	if stats.Index != nil {
		// every key is ascending; indexName keeps the compound key order
		keyPattern := domain.Document{}
		for _, f := range stats.Index.Fields {
			keyPattern[f] = int(domain.Ascending)
		}
		winningPlan = domain.Document{
			"stage": "FETCH",
			"inputStage": domain.Document{
				"stage":      "IXSCAN",
				"indexName":  stats.Index.Name,
				"keyPattern": keyPattern,
			},
		}
	} else {
		winningPlan = domain.Document{
			"stage":     "COLLSCAN",
			"direction": "forward",
		}
	}

	return domain.Document{
		"queryPlanner": domain.Document{
			"namespace":     collName,
			"parsedQuery":   filter.String(),
			"winningPlan":   winningPlan,
			"rejectedPlans": []interface{}{},
		},
		"executionStats": domain.Document{
			"executionSuccess":    true,
			"nReturned":           int64(len(matched)),
			"executionTimeMillis": elapsed.Milliseconds(),
			"totalKeysExamined":   int64(stats.KeysExamined),
			"totalDocsExamined":   int64(stats.DocsExamined),
		},
	}, nil
}
