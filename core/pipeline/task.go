package pipeline

import (
	"strings"
	"time"
)

// Status is the lifecycle state of one fetch task.
type Status string

const (
	StatusPending  Status = "pending"
	StatusInFlight Status = "in_flight"
	// StatusSucceeded is terminal: payload fetched (or served from cache)
	// and persisted.
	StatusSucceeded Status = "succeeded"
	// StatusFailed is terminal: retries and sources exhausted, or the
	// persist step rejected the payload.
	StatusFailed Status = "failed"
	// StatusSkipped is terminal: a pre-fetch validation reject, distinct
	// from Failed. No network attempt was made.
	StatusSkipped Status = "skipped"
)

// RunState is the terminal state of a whole batch run.
type RunState string

const (
	RunStateRunning             RunState = "running"
	RunStateSuccess             RunState = "success"
	RunStateCompletedWithErrors RunState = "completed_with_errors"
	RunStateFailed              RunState = "failed"
)

// Task is one unit of loader work.
type Task struct {
	// EntityID is the entity's SID.
	EntityID int64
	// Symbol is the canonical symbol used when no vendor mapping exists.
	Symbol string
	// Sources is the ordered priority list of vendor tags to try.
	Sources []string
	// CacheKey deterministically identifies this request shape.
	CacheKey string
	// EndpointTag is a diagnostic label recorded on the cache row.
	EndpointTag string
}

// TaskResult is the terminal outcome of one task.
type TaskResult struct {
	Task      Task
	Status    Status
	Payload   []byte
	Source    string
	FromCache bool
	Err       error
}

// CacheKey builds a deterministic cache key from its parts. Parts must
// themselves be deterministic; the key identifies the request shape, so
// the same logical request always maps to the same row.
func CacheKey(parts ...string) string {
	return strings.Join(parts, ":")
}

// BatchRun aggregates one pipeline execution.
type BatchRun struct {
	// ID is the unique run identifier.
	ID string
	// Name labels the run for process tracking (e.g. "quotes").
	Name string

	State      RunState
	StartedAt  time.Time
	FinishedAt time.Time

	Succeeded int
	Failed    int
	Skipped   int
}

// finish derives the terminal state from the task outcome counts.
func (r *BatchRun) finish(at time.Time) {
	r.FinishedAt = at
	switch {
	case r.Failed == 0:
		r.State = RunStateSuccess
	case r.Succeeded == 0:
		r.State = RunStateFailed
	default:
		r.State = RunStateCompletedWithErrors
	}
}
