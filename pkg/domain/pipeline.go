package domain

import "fmt"

// Stage is one transform step of an aggregation pipeline
type Stage interface {
	StageName() string
	Validate() error
}

// Pipeline is an ordered list of stages executed over a collection
type Pipeline []Stage

// Validate validates every stage of the pipeline
func (p Pipeline) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("%w: empty pipeline", ErrInvalidPipeline)
	}
	for i, s := range p {
		if s == nil {
			return fmt.Errorf("%w: stage %d is nil", ErrInvalidPipeline, i)
		}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("stage %d (%s): %w", i, s.StageName(), err)
		}
	}
	return nil
}

// GroupKey selects the value documents are grouped by. With Bucket > 0 the
// key is floor(Field / Bucket), so Bucket 10 over a year yields its decade
// index (1955 -> 195).
type GroupKey struct {
	Field  string
	Bucket int
}

// ByField groups on the raw value of a field
func ByField(field string) GroupKey { return GroupKey{Field: field} }

// ByBucket groups on floor(field / width)
func ByBucket(field string, width int) GroupKey { return GroupKey{Field: field, Bucket: width} }

// AccumulatorOp is the reduction applied per group
type AccumulatorOp string

const (
	AccAvg   AccumulatorOp = "$avg"
	AccSum   AccumulatorOp = "$sum"
	AccCount AccumulatorOp = "$count"
)

// Accumulator names one output field of a group stage
type Accumulator struct {
	Name  string
	Op    AccumulatorOp
	Field string // unused for AccCount
}

// Avg averages the numeric values of field
func Avg(name, field string) Accumulator { return Accumulator{Name: name, Op: AccAvg, Field: field} }

// Sum totals the numeric values of field
func Sum(name, field string) Accumulator { return Accumulator{Name: name, Op: AccSum, Field: field} }

// Count counts the documents in each group
func Count(name string) Accumulator { return Accumulator{Name: name, Op: AccCount} }

// GroupStage groups documents by key. Each output document carries the key
// under _id plus one field per accumulator.
type GroupStage struct {
	By           GroupKey
	Accumulators []Accumulator
}

func (GroupStage) StageName() string { return "$group" }

func (g GroupStage) Validate() error {
	if g.By.Field == "" {
		return fmt.Errorf("%w: group key field is required", ErrInvalidPipeline)
	}
	if g.By.Bucket < 0 {
		return fmt.Errorf("%w: bucket width cannot be negative", ErrInvalidPipeline)
	}
	seen := map[string]bool{IDField: true}
	for _, a := range g.Accumulators {
		if a.Name == "" || seen[a.Name] {
			return fmt.Errorf("%w: accumulator name %q is empty or duplicated", ErrInvalidPipeline, a.Name)
		}
		seen[a.Name] = true
		switch a.Op {
		case AccAvg, AccSum:
			if a.Field == "" {
				return fmt.Errorf("%w: %s accumulator %s needs a field", ErrInvalidPipeline, a.Op, a.Name)
			}
		case AccCount:
		default:
			return fmt.Errorf("%w: unsupported accumulator %q", ErrInvalidPipeline, a.Op)
		}
	}
	return nil
}

// SortStage orders the documents flowing through the pipeline
type SortStage struct {
	Keys []SortKey
}

func (SortStage) StageName() string { return "$sort" }

func (s SortStage) Validate() error {
	if len(s.Keys) == 0 {
		return fmt.Errorf("%w: sort stage needs at least one key", ErrInvalidPipeline)
	}
	opts := FindOptions{Sort: s.Keys}
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPipeline, err)
	}
	return nil
}

// LimitStage passes through at most N documents
type LimitStage struct {
	N int64
}

func (LimitStage) StageName() string { return "$limit" }

func (l LimitStage) Validate() error {
	if l.N <= 0 {
		return fmt.Errorf("%w: limit must be positive", ErrInvalidPipeline)
	}
	return nil
}

// ComputedField sets Name to the numeric value of Field multiplied by Factor
type ComputedField struct {
	Name   string
	Field  string
	Factor float64
}

// ProjectStage reshapes documents: it keeps the listed fields, adds the
// computed ones and optionally drops _id.
type ProjectStage struct {
	Fields    []string
	Computed  []ComputedField
	ExcludeID bool
}

func (ProjectStage) StageName() string { return "$project" }

func (p ProjectStage) Validate() error {
	if len(p.Fields) == 0 && len(p.Computed) == 0 && !p.ExcludeID {
		return fmt.Errorf("%w: project stage selects nothing", ErrInvalidPipeline)
	}
	for _, c := range p.Computed {
		if c.Name == "" || c.Field == "" {
			return fmt.Errorf("%w: computed field needs a name and a source", ErrInvalidPipeline)
		}
	}
	return nil
}
