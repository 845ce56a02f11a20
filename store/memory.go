package store

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// NewMemoryBundle creates a Bundle backed entirely by in-memory stores
func NewMemoryBundle() *Bundle {
	return &Bundle{
		Runs: &MemoryRunStore{
			runs:     make(map[string]*Run),
			outcomes: make(map[string]map[int]Outcome),
		},
	}
}

type MemoryRunStore struct {
	mu       sync.Mutex
	runs     map[string]*Run
	outcomes map[string]map[int]Outcome
}

func (s *MemoryRunStore) CreateRun(jobName, kind, model string, total, workers int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := generateID()
	s.runs[id] = &Run{
		ID:        id,
		JobName:   jobName,
		Kind:      kind,
		Model:     model,
		Status:    StatusRunning,
		Total:     total,
		Workers:   workers,
		StartedAt: time.Now(),
	}
	s.outcomes[id] = make(map[int]Outcome)
	return id, nil
}

func (s *MemoryRunStore) FinishRun(id string, summary RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	now := time.Now()
	run.Status = summary.Status
	run.Succeeded = summary.Succeeded
	run.Failed = summary.Failed
	run.InputTokens = summary.InputTokens
	run.OutputTokens = summary.OutputTokens
	run.CostUSD = summary.CostUSD
	run.Error = errPtr(summary.Error)
	run.FinishedAt = &now
	return nil
}

func (s *MemoryRunStore) RecordOutcomes(runID string, outcomes []Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byIndex, ok := s.outcomes[runID]
	if !ok {
		return fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	for _, o := range outcomes {
		byIndex[o.Index] = o
	}
	return nil
}

func (s *MemoryRunStore) GetRun(id string) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	cp := *run
	return &cp, nil
}

func (s *MemoryRunStore) ListRuns(limit, offset int) ([]Run, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]Run, 0, len(s.runs))
	for _, r := range s.runs {
		all = append(all, *r)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].StartedAt.After(all[j].StartedAt)
	})

	total := len(all)
	if offset >= total {
		return []Run{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (s *MemoryRunStore) GetOutcomes(runID string) ([]Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byIndex, ok := s.outcomes[runID]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	out := make([]Outcome, 0, len(byIndex))
	for _, o := range byIndex {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}
