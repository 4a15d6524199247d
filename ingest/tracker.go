package ingest

import (
	"sync"
	"time"
)

type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Status is a snapshot of the most recent ingestion run. Background
// ingestion is fire-and-forget from the caller's perspective; the tracker
// is how operators observe completion or failure.
type Status struct {
	State      State      `json:"state"`
	Source     string     `json:"source,omitempty"`
	Count      int        `json:"count"`
	Error      string     `json:"error,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Tracker records the lifecycle of ingestion runs.
type Tracker struct {
	mu     sync.Mutex
	status Status
}

func NewTracker() *Tracker {
	return &Tracker{status: Status{State: StateIdle}}
}

// Begin marks a run as started. Returns false when a run is already in
// flight; overlapping runs are rejected rather than interleaved.
func (t *Tracker) Begin(source string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.State == StateRunning {
		return false
	}
	now := time.Now()
	t.status = Status{State: StateRunning, Source: source, StartedAt: &now}
	return true
}

// Finish records the outcome of the run started by Begin.
func (t *Tracker) Finish(count int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	t.status.FinishedAt = &now
	t.status.Count = count
	if err != nil {
		t.status.State = StateFailed
		t.status.Error = err.Error()
		return
	}
	t.status.State = StateSucceeded
}

// Snapshot returns a copy of the current status.
func (t *Tracker) Snapshot() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}
