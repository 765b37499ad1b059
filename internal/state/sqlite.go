package state

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite state store instance.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &SQLiteStore{logger: logger}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", path)
	} else {
		dsn = ":memory:?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	s.logger.Debug("state store opened", "path", path)
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// --- Run operations ---

// CreateRun records the start of a generation run.
func (s *SQLiteStore) CreateRun(notebook, dialect string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{
		ID:        generateID(),
		Notebook:  notebook,
		Dialect:   dialect,
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (id, notebook, dialect, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Notebook, run.Dialect, run.Status, run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	return run, nil
}

// CompleteRun marks a run as completed with its emitted statement count.
func (s *SQLiteStore) CompleteRun(id string, statements int) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	_, err := s.db.Exec(
		`UPDATE runs SET status = ?, statements = ?, completed_at = ? WHERE id = ?`,
		RunStatusCompleted, statements, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// FailRun marks a run as failed with its cause.
func (s *SQLiteStore) FailRun(id string, cause error) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	msg := ""
	if cause != nil {
		msg = cause.Error()
	}

	_, err := s.db.Exec(
		`UPDATE runs SET status = ?, error = ?, completed_at = ? WHERE id = ?`,
		RunStatusFailed, msg, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to fail run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{}
	var completedAt sql.NullTime
	var errMsg sql.NullString

	err := s.db.QueryRow(
		`SELECT id, notebook, dialect, status, statements, error, started_at, completed_at
		 FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.Notebook, &run.Dialect, &run.Status, &run.Statements,
		&errMsg, &run.StartedAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	if errMsg.Valid {
		run.Error = errMsg.String
	}
	return run, nil
}

// ListRuns returns the most recent runs for a notebook, newest first.
// An empty notebook matches all notebooks.
func (s *SQLiteStore) ListRuns(notebook string, limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, notebook, dialect, status, statements, error, started_at, completed_at
	          FROM runs`
	args := []any{}
	if notebook != "" {
		query += ` WHERE notebook = ?`
		args = append(args, notebook)
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		var completedAt sql.NullTime
		var errMsg sql.NullString
		if err := rows.Scan(&run.ID, &run.Notebook, &run.Dialect, &run.Status,
			&run.Statements, &errMsg, &run.StartedAt, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if completedAt.Valid {
			t := completedAt.Time
			run.CompletedAt = &t
		}
		if errMsg.Valid {
			run.Error = errMsg.String
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// --- Cell operations ---

// UpsertCell writes a cell record, replacing any existing row with the same
// (notebook, identifier) key.
func (s *SQLiteStore) UpsertCell(rec *CellRecord) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	now := time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO notebook_cells (id, notebook, identifier, kind, caption, content_hash, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (notebook, identifier) DO UPDATE SET
		   kind = excluded.kind,
		   caption = excluded.caption,
		   content_hash = excluded.content_hash,
		   updated_at = excluded.updated_at`,
		rec.ID, rec.Notebook, rec.Identifier, rec.Kind, rec.Caption, rec.ContentHash, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cell %s.%s: %w", rec.Notebook, rec.Identifier, err)
	}
	rec.UpdatedAt = now
	return nil
}

// GetCell retrieves a cell record by its natural key.
func (s *SQLiteStore) GetCell(notebook, identifier string) (*CellRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rec := &CellRecord{}
	err := s.db.QueryRow(
		`SELECT id, notebook, identifier, kind, caption, content_hash, updated_at
		 FROM notebook_cells WHERE notebook = ? AND identifier = ?`,
		notebook, identifier,
	).Scan(&rec.ID, &rec.Notebook, &rec.Identifier, &rec.Kind, &rec.Caption,
		&rec.ContentHash, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cell: %w", err)
	}
	return rec, nil
}

// ListCells returns all cell records for a notebook in identifier order.
func (s *SQLiteStore) ListCells(notebook string) ([]*CellRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, notebook, identifier, kind, caption, content_hash, updated_at
		 FROM notebook_cells WHERE notebook = ? ORDER BY identifier`,
		notebook,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cells: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recs []*CellRecord
	for rows.Next() {
		rec := &CellRecord{}
		if err := rows.Scan(&rec.ID, &rec.Notebook, &rec.Identifier, &rec.Kind,
			&rec.Caption, &rec.ContentHash, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cell: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
