// Package state provides generation-state tracking using SQLite.
// It records generation runs and the content hashes of emitted cells, so
// unchanged notebooks can be recognized across regenerations.
package state

import "time"

// RunStatus describes the outcome of a generation run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one generation run of a notebook.
type Run struct {
	ID          string
	Notebook    string
	Dialect     string
	Status      RunStatus
	Statements  int
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// CellRecord is the persisted identity and content hash of an emitted cell.
type CellRecord struct {
	ID          string // deterministic UUID from (notebook, identifier)
	Notebook    string
	Identifier  string
	Kind        string
	Caption     string
	ContentHash string
	UpdatedAt   time.Time
}

// Store is the persistence interface for generation state.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	CreateRun(notebook, dialect string) (*Run, error)
	CompleteRun(id string, statements int) error
	FailRun(id string, cause error) error
	GetRun(id string) (*Run, error)
	ListRuns(notebook string, limit int) ([]*Run, error)

	UpsertCell(rec *CellRecord) error
	GetCell(notebook, identifier string) (*CellRecord, error)
	ListCells(notebook string) ([]*CellRecord, error)
}
