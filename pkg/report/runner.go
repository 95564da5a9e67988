package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/adfharrison1/bookreport/pkg/domain"
)

var (
	// ErrUnknownOperation is returned when selecting a name not in the catalog
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrEmptySelection is returned when a selection leaves nothing to run
	ErrEmptySelection = errors.New("no operations selected")
)

// OperationError reports the operation that aborted a run
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("operation %s failed: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Outcome records the execution of one operation
type Outcome struct {
	Name     string        `json:"name"`
	Title    string        `json:"title"`
	Duration time.Duration `json:"duration"`
	Count    int64         `json:"count"`
	Error    string        `json:"error,omitempty"`
}

// Summary lists what a run executed, in order. Operations after a failure
// do not appear.
type Summary struct {
	Outcomes []Outcome `json:"outcomes"`
	Failed   string    `json:"failed,omitempty"`
}

// Renderer presents results as they are produced
type Renderer interface {
	Heading(op Operation)
	Result(op Operation, res Result) error
	Summary(s *Summary)
}

// Runner executes operations strictly in order against one collection
type Runner struct {
	ops      []Operation
	renderer Renderer
	logger   *zap.SugaredLogger
}

type RunnerOption func(*Runner)

// WithOperations replaces the catalog the runner executes
func WithOperations(ops []Operation) RunnerOption {
	return func(r *Runner) {
		r.ops = ops
	}
}

// WithRenderer sets where results are presented; by default they are dropped
func WithRenderer(renderer Renderer) RunnerOption {
	return func(r *Runner) {
		r.renderer = renderer
	}
}

func WithLogger(logger *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger.Sugar()
		}
	}
}

// NewRunner creates a runner over the full catalog
func NewRunner(options ...RunnerOption) *Runner {
	r := &Runner{
		ops:      Catalog(),
		renderer: nopRenderer{},
		logger:   zap.NewNop().Sugar(),
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// Operations returns the operations the runner will execute
func (r *Runner) Operations() []Operation {
	return r.ops
}

// Run executes every operation in order. The first failure is logged and
// aborts the run; the returned summary covers what ran and the error is an
// *OperationError.
func (r *Runner) Run(ctx context.Context, coll domain.Collection) (*Summary, error) {
	summary := &Summary{Outcomes: make([]Outcome, 0, len(r.ops))}
	for _, op := range r.ops {
		if err := ctx.Err(); err != nil {
			summary.Outcomes = append(summary.Outcomes, Outcome{Name: op.Name, Title: op.Title, Error: err.Error()})
			summary.Failed = op.Name
			r.logger.Warnf("Run interrupted before operation %s: %v", op.Name, err)
			return summary, &OperationError{Op: op.Name, Err: err}
		}

		r.renderer.Heading(op)
		r.logger.Debugf("Running operation %s", op.Name)

		start := time.Now()
		res, err := op.Run(ctx, coll)
		outcome := Outcome{Name: op.Name, Title: op.Title, Duration: time.Since(start)}
		if err != nil {
			outcome.Error = err.Error()
			summary.Outcomes = append(summary.Outcomes, outcome)
			summary.Failed = op.Name
			r.logger.Errorf("Operation %s failed: %v", op.Name, err)
			return summary, &OperationError{Op: op.Name, Err: err}
		}
		outcome.Count = res.Count()
		summary.Outcomes = append(summary.Outcomes, outcome)

		if err := r.renderer.Result(op, res); err != nil {
			r.logger.Warnf("Failed to render %s: %v", op.Name, err)
		}
		r.logger.Debugf("Operation %s returned %d in %v", op.Name, outcome.Count, outcome.Duration)
	}
	r.renderer.Summary(summary)
	return summary, nil
}

// RunOne executes a single operation by name without rendering
func RunOne(ctx context.Context, coll domain.Collection, name string) (Result, error) {
	op, ok := Lookup(name)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownOperation, name)
	}
	res, err := op.Run(ctx, coll)
	if err != nil {
		return Result{}, &OperationError{Op: name, Err: err}
	}
	return res, nil
}

// Select narrows ops to the named ones, keeping catalog order, and drops
// mutating operations when readOnly is set. An empty only list keeps all.
// A selection that keeps nothing is ErrEmptySelection.
func Select(ops []Operation, only []string, readOnly bool) ([]Operation, error) {
	wanted := make(map[string]bool, len(only))
	for _, name := range only {
		wanted[name] = true
	}
	for name := range wanted {
		found := false
		for _, op := range ops {
			if op.Name == name {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, name)
		}
	}

	out := make([]Operation, 0, len(ops))
	for _, op := range ops {
		if len(wanted) > 0 && !wanted[op.Name] {
			continue
		}
		if readOnly && op.Mutates {
			continue
		}
		out = append(out, op)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: every requested operation modifies the collection", ErrEmptySelection)
	}
	return out, nil
}

type nopRenderer struct{}

func (nopRenderer) Heading(Operation)              {}
func (nopRenderer) Result(Operation, Result) error { return nil }
func (nopRenderer) Summary(*Summary)               {}
