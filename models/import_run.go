package models

import (
	"time"

	"gorm.io/datatypes"
)

// Run statuses for ImportRun.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// ImportRun records the accounting of one server-side batched import run.
// One row per run; the orchestrator updates it after every batch so the
// operator can poll cumulative progress.
type ImportRun struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Status string `json:"status" gorm:"index;default:'running'"`

	ItemsTotal     int `json:"items_total"`
	ItemsProcessed int `json:"items_processed"`
	BatchesTotal   int `json:"batches_total"`
	BatchesDone    int `json:"batches_done"`

	CreatedCount int `json:"created_count"`
	UpdatedCount int `json:"updated_count"`
	ErrorCount   int `json:"error_count"`

	// Flat list of per-record and batch-level error strings.
	Errors datatypes.JSON `json:"errors,omitempty" gorm:"type:jsonb"`

	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// TableName sets the explicit table name for GORM.
func (ImportRun) TableName() string {
	return "import_runs"
}
