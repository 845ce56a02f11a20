package streamers

import "curator/batch"

// BatchHandler receives the lifecycle events of one job's batch.
// Different implementations can write to the terminal, a websocket, etc.
// ItemProgress calls for one batch are serialized.
type BatchHandler interface {
	// BatchStarted is called once before any item is dispatched
	BatchStarted(job string, total int, workers int)

	// ItemProgress is called once per completed item with the running counts
	ItemProgress(job string, p batch.Progress)

	// BatchCompleted is called after every item reached a terminal state
	BatchCompleted(job string, succeeded int, failed int)
}

// Multi fans every event out to each handler in order
type Multi []BatchHandler

func (m Multi) BatchStarted(job string, total int, workers int) {
	for _, h := range m {
		h.BatchStarted(job, total, workers)
	}
}

func (m Multi) ItemProgress(job string, p batch.Progress) {
	for _, h := range m {
		h.ItemProgress(job, p)
	}
}

func (m Multi) BatchCompleted(job string, succeeded int, failed int) {
	for _, h := range m {
		h.BatchCompleted(job, succeeded, failed)
	}
}

// Discard ignores every event
type Discard struct{}

func (Discard) BatchStarted(string, int, int) {}

func (Discard) ItemProgress(string, batch.Progress) {}

func (Discard) BatchCompleted(string, int, int) {}
