package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a run does not exist
var ErrNotFound = errors.New("not found")

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Bundle holds the stores used to record batch runs
type Bundle struct {
	Runs   RunStore
	closer func() error
}

// Close cleans up the bundle resources
func (b *Bundle) Close() error {
	if b.closer != nil {
		return b.closer()
	}
	return nil
}

// RunStore records batch runs and the outcome of every item
type RunStore interface {
	CreateRun(jobName, kind, model string, total, workers int) (id string, err error)
	FinishRun(id string, summary RunSummary) error
	RecordOutcomes(runID string, outcomes []Outcome) error
	GetRun(id string) (*Run, error)
	ListRuns(limit, offset int) ([]Run, int, error)
	GetOutcomes(runID string) ([]Outcome, error)
}

// Run is one execution of a job
type Run struct {
	ID           string     `json:"id"`
	JobName      string     `json:"jobName"`
	Kind         string     `json:"kind"`
	Model        string     `json:"model"`
	Status       string     `json:"status"`
	Total        int        `json:"total"`
	Workers      int        `json:"workers"`
	Succeeded    int        `json:"succeeded"`
	Failed       int        `json:"failed"`
	InputTokens  int        `json:"inputTokens"`
	OutputTokens int        `json:"outputTokens"`
	CostUSD      float64    `json:"costUsd"`
	StartedAt    time.Time  `json:"startedAt"`
	FinishedAt   *time.Time `json:"finishedAt,omitempty"`
	Error        *string    `json:"error,omitempty"`
}

// RunSummary is written when a run reaches a terminal state
type RunSummary struct {
	Status       string
	Succeeded    int
	Failed       int
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	Error        string
}

// Outcome is the terminal state of one batch item
type Outcome struct {
	Index       int    `json:"index"`
	Succeeded   bool   `json:"succeeded"`
	PayloadJSON string `json:"payloadJson,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

func generateID() string {
	return uuid.NewString()
}

func errPtr(msg string) *string {
	if msg == "" {
		return nil
	}
	return &msg
}
