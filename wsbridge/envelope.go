package wsbridge

import "time"

// EventType identifies a progress frame
type EventType string

const (
	EventBatchStarted   EventType = "batch_started"
	EventItemProgress   EventType = "item_progress"
	EventBatchCompleted EventType = "batch_completed"
)

// Envelope is the JSON frame written for every event
type Envelope struct {
	Type      EventType `json:"type"`
	Job       string    `json:"job"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type BatchStartedData struct {
	Total   int `json:"total"`
	Workers int `json:"workers"`
}

type ItemProgressData struct {
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Index     int    `json:"index"`
	Reason    string `json:"reason,omitempty"`
}

type BatchCompletedData struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}
