// Package engine orchestrates notebook generation. It binds the notebook
// registry, SQL dialect, and state store together and records each
// generation run.
package engine

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/inkwell-sql/inkwell/internal/state"
	"github.com/inkwell-sql/inkwell/pkg/dialect"
	"github.com/inkwell-sql/inkwell/pkg/notebook"
)

// Engine generates SQL scripts and upsert statements from registered
// notebooks.
type Engine struct {
	logger  *slog.Logger
	store   state.Store
	dialect *dialect.Dialect
	params  map[string]string
}

// Config holds engine configuration.
type Config struct {
	// StatePath is the path to the SQLite state database
	// (":memory:" for transient state).
	StatePath string
	// Dialect is the SQL dialect name for generated output.
	Dialect string
	// Params are generation parameters exposed to cell functions.
	Params map[string]string
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// New creates a new engine. The state store is opened and migrated eagerly;
// generation itself performs no I/O beyond state bookkeeping.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	dialectName := cfg.Dialect
	if dialectName == "" {
		dialectName = "sqlite"
	}
	d, ok := dialect.Get(dialectName)
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q (available: %v)", dialectName, dialect.List())
	}

	statePath := cfg.StatePath
	if statePath == "" {
		statePath = ":memory:"
	}

	logger.Debug("initializing engine", "dialect", dialectName, "state_path", statePath)

	store := state.NewSQLiteStore(logger)
	if err := store.Open(statePath); err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate state store: %w", err)
	}

	return &Engine{
		logger:  logger,
		store:   store,
		dialect: d,
		params:  cfg.Params,
	}, nil
}

// Close releases the state store.
func (e *Engine) Close() error {
	e.logger.Debug("closing engine")
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}

// Dialect returns the engine's SQL dialect.
func (e *Engine) Dialect() *dialect.Dialect {
	return e.dialect
}

// StateStore returns the state store.
func (e *Engine) StateStore() state.Store {
	return e.store
}

// Notebooks returns all registered notebook names.
func (e *Engine) Notebooks() []string {
	return notebook.List()
}

// lookup fetches a registered notebook or fails with the available names.
func (e *Engine) lookup(name string) (*notebook.Definition, error) {
	def, ok := notebook.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown notebook %q (available: %v)", name, notebook.List())
	}
	return def, nil
}
