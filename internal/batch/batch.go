// Package batch applies one mutation across many inputs with bounded
// parallelism, reporting a per-input outcome instead of failing the
// whole batch on the first error.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"tasksync/internal/retry"
	"tasksync/internal/taskerr"
)

// DefaultConcurrency bounds the worker pool when Options.Concurrency is
// left zero.
const DefaultConcurrency = 8

// Outcome is the result for one input: either Value or Err is set.
type Outcome[I, T any] struct {
	Input I
	Value T
	Err   error
}

// Summary aggregates a batch so callers can judge it without re-scanning
// the outcomes.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	ByKind    map[taskerr.Kind]int
}

// SuccessRate returns the fraction of inputs that succeeded. An empty
// batch counts as fully successful.
func (s Summary) SuccessRate() float64 {
	if s.Total == 0 {
		return 1
	}
	return float64(s.Succeeded) / float64(s.Total)
}

// Options configures a batch run.
type Options struct {
	// Concurrency bounds how many operations run in parallel.
	Concurrency int

	// Retry is the per-input retry budget.
	Retry retry.Config
}

// Run applies op to every input, each under its own retry budget, up to
// opts.Concurrency at a time. One input's terminal failure never aborts
// the others.
//
// The returned slice always has len(inputs) entries and outcome[i]
// corresponds to inputs[i], regardless of completion order. Duplicate
// inputs are processed independently; their ordering at the service is
// undefined. On context cancellation, operations not yet started fail
// with a KindCancelled error while completed outcomes remain valid.
func Run[I, T any](ctx context.Context, inputs []I, op func(context.Context, I) (T, error), opts Options) ([]Outcome[I, T], Summary) {
	workers := opts.Concurrency
	if workers <= 0 {
		workers = DefaultConcurrency
	}

	outcomes := make([]Outcome[I, T], len(inputs))

	// Deliberately not errgroup.WithContext: a failing input must not
	// cancel its siblings.
	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, in := range inputs {
		outcomes[i].Input = in
		g.Go(func() error {
			v, err := retry.Do(ctx, opts.Retry, func(ctx context.Context) (T, error) {
				return op(ctx, in)
			})
			outcomes[i].Value, outcomes[i].Err = v, err
			return nil
		})
	}
	g.Wait()

	return outcomes, Summarize(outcomes)
}

// Summarize builds a Summary from a slice of outcomes.
func Summarize[I, T any](outcomes []Outcome[I, T]) Summary {
	s := Summary{Total: len(outcomes), ByKind: make(map[taskerr.Kind]int)}
	for _, o := range outcomes {
		if o.Err == nil {
			s.Succeeded++
			continue
		}
		s.Failed++
		s.ByKind[taskerr.KindOf(o.Err)]++
	}
	return s
}
