// Package batch runs independent work items across a bounded pool of
// goroutines and collects one outcome per item.
//
// A batch never aborts because an item failed: every error (or panic) returned
// by the operation is recorded against the item's original index and the
// remaining items keep running. Run returns only after every item reached a
// terminal state.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"
)

var (
	// ErrInvalidWorkers is returned when MaxWorkers is below 1.
	ErrInvalidWorkers = errors.New("batch: max workers must be at least 1")
	// ErrNilOperation is returned when no operation is supplied.
	ErrNilOperation = errors.New("batch: operation is nil")
)

const errNoReturn = "operation exited without returning"

// Operation processes a single work item.
type Operation[T, R any] func(ctx context.Context, item T) (R, error)

// Options configures a single Run.
type Options struct {
	// MaxWorkers caps the number of operations in flight.
	MaxWorkers int
	// OnProgress is called once per completed item. Calls are serialized.
	OnProgress ProgressFunc
	// Logger receives callback panics. Defaults to a null logger.
	Logger hclog.Logger
}

// Success is a completed item with its payload.
type Success[R any] struct {
	Index int
	Value R
}

// Failure is an item whose operation returned an error or panicked.
type Failure struct {
	Index  int
	Reason string
}

// Result holds the outcome of every item in a batch.
type Result[R any] struct {
	// Successes are sorted by original index.
	Successes []Success[R]
	// Failures are in completion order.
	Failures []Failure
}

// Len returns the number of outcomes in the result.
func (r *Result[R]) Len() int {
	return len(r.Successes) + len(r.Failures)
}

// Values returns the success payloads in input order.
func (r *Result[R]) Values() []R {
	values := make([]R, len(r.Successes))
	for i, s := range r.Successes {
		values[i] = s.Value
	}
	return values
}

// outcome is the per-slot record written by exactly one worker.
type outcome[R any] struct {
	value  R
	reason string
	ok     bool
}

// Run executes op for every item with at most opts.MaxWorkers operations in
// flight. Items that have not started when ctx is cancelled are recorded as
// failures without invoking op.
func Run[T, R any](ctx context.Context, items []T, op Operation[T, R], opts Options) (*Result[R], error) {
	if opts.MaxWorkers < 1 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidWorkers, opts.MaxWorkers)
	}
	if op == nil {
		return nil, ErrNilOperation
	}

	result := &Result[R]{
		Successes: []Success[R]{},
		Failures:  []Failure{},
	}
	if len(items) == 0 {
		return result, nil
	}

	outcomes := make([]outcome[R], len(items))
	tracker := newTracker(len(items), opts.OnProgress, opts.Logger)

	// Failures are appended as they complete so callers see completion order.
	var failMu sync.Mutex
	recordFailure := func(i int, reason string) {
		outcomes[i] = outcome[R]{reason: reason}
		failMu.Lock()
		result.Failures = append(result.Failures, Failure{Index: i, Reason: reason})
		failMu.Unlock()
		tracker.record(i, false, reason)
	}

	// Semaphore to limit concurrent operations
	sem := make(chan struct{}, opts.MaxWorkers)
	var wg sync.WaitGroup

	for i, item := range items {
		i, item := i, item

		wg.Add(1)
		go func() {
			defer wg.Done()

			// Acquire semaphore slot (blocks if at the worker limit)
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				recordFailure(i, ctx.Err().Error())
				return
			}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				recordFailure(i, err.Error())
				return
			}

			// op may end the goroutine without returning (runtime.Goexit)
			returned := false
			defer func() {
				if !returned {
					recordFailure(i, errNoReturn)
				}
			}()

			value, err := invoke(ctx, op, item)
			returned = true
			if err != nil {
				recordFailure(i, err.Error())
				return
			}
			outcomes[i] = outcome[R]{value: value, ok: true}
			tracker.record(i, true, "")
		}()
	}

	wg.Wait()

	for i, o := range outcomes {
		if o.ok {
			result.Successes = append(result.Successes, Success[R]{Index: i, Value: o.value})
		}
	}
	return result, nil
}

// invoke calls op and converts a panic into an error for that item.
func invoke[T, R any](ctx context.Context, op Operation[T, R], item T) (value R, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return op(ctx, item)
}
