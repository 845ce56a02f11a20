package batch

import (
	"sync"

	"github.com/hashicorp/go-hclog"
)

// Progress is a snapshot of a running batch taken right after one item
// completed.
type Progress struct {
	Total     int
	Completed int
	Succeeded int
	Failed    int

	// Index of the item that just completed.
	Index int
	// Reason is set when that item failed.
	Reason string
}

// Done reports whether every item has completed.
func (p Progress) Done() bool {
	return p.Completed == p.Total
}

// ProgressFunc receives progress snapshots. A panic in the callback is logged
// and does not affect the batch.
type ProgressFunc func(Progress)

// tracker owns the counters for one batch. The callback runs under the same
// lock as the counter update, so observations arrive in order.
type tracker struct {
	mu         sync.Mutex
	total      int
	succeeded  int
	failed     int
	onProgress ProgressFunc
	logger     hclog.Logger
}

func newTracker(total int, fn ProgressFunc, logger hclog.Logger) *tracker {
	if fn == nil {
		fn = func(Progress) {}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &tracker{total: total, onProgress: fn, logger: logger}
}

func (t *tracker) record(index int, ok bool, reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ok {
		t.succeeded++
	} else {
		t.failed++
	}
	t.notify(Progress{
		Total:     t.total,
		Completed: t.succeeded + t.failed,
		Succeeded: t.succeeded,
		Failed:    t.failed,
		Index:     index,
		Reason:    reason,
	})
}

func (t *tracker) notify(p Progress) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("progress callback panicked", "index", p.Index, "panic", r)
		}
	}()
	t.onProgress(p)
}
