package pipeline

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Tracker receives lifecycle events bracketing a batch run.
type Tracker interface {
	// Start is emitted before any task is dispatched.
	Start(ctx context.Context, run *BatchRun) error
	// Complete is emitted after the run reached its terminal state.
	Complete(ctx context.Context, run *BatchRun) error
}

// ProcessRun is the persisted form of a batch run in the process_runs
// table.
type ProcessRun struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`

	RunID string `gorm:"column:run_id;uniqueIndex;size:36" json:"run_id"`
	Name  string `gorm:"column:name;size:64;index" json:"name"`
	State string `gorm:"column:state;size:32" json:"state"`

	StartedAt  time.Time  `gorm:"column:started_at" json:"started_at"`
	FinishedAt *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`

	Succeeded int `gorm:"column:succeeded" json:"succeeded"`
	Failed    int `gorm:"column:failed" json:"failed"`
	Skipped   int `gorm:"column:skipped" json:"skipped"`
}

// TableName overrides the gorm table name.
func (ProcessRun) TableName() string {
	return "process_runs"
}

// gormTracker persists run lifecycle events to the process_runs table.
type gormTracker struct {
	db *gorm.DB
}

// NewTracker creates a Tracker over the process_runs table.
func NewTracker(db *gorm.DB) Tracker {
	return &gormTracker{db: db}
}

func (t *gormTracker) Start(ctx context.Context, run *BatchRun) error {
	row := ProcessRun{
		RunID:     run.ID,
		Name:      run.Name,
		State:     string(RunStateRunning),
		StartedAt: run.StartedAt,
	}
	return t.db.WithContext(ctx).Create(&row).Error
}

func (t *gormTracker) Complete(ctx context.Context, run *BatchRun) error {
	finished := run.FinishedAt
	return t.db.WithContext(ctx).Model(&ProcessRun{}).
		Where("run_id = ?", run.ID).
		Updates(map[string]any{
			"state":       string(run.State),
			"finished_at": &finished,
			"succeeded":   run.Succeeded,
			"failed":      run.Failed,
			"skipped":     run.Skipped,
		}).Error
}

// NopTracker discards lifecycle events. Useful for tests and one-off
// CLI runs without a database.
type NopTracker struct{}

func (NopTracker) Start(context.Context, *BatchRun) error    { return nil }
func (NopTracker) Complete(context.Context, *BatchRun) error { return nil }
