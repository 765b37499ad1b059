package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-sql/inkwell/internal/state"
	"github.com/inkwell-sql/inkwell/pkg/notebook"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(Config{StatePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func sqlCell(sql string) notebook.CellFunc {
	return func(ctx context.Context, ec *notebook.EmitContext) (notebook.Fragment, error) {
		return notebook.Text(sql), nil
	}
}

func TestNew_UnknownDialect(t *testing.T) {
	_, err := New(Config{Dialect: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestEngine_Generate_EndToEnd(t *testing.T) {
	// The canonical two-cell flow: init creates a table, seed fills it.
	d := notebook.NewDefinition("engine-orders")
	d.MustCell(notebook.CellMetadata{
		Identifier:  "seed",
		Caption:     "Seed the first customer",
		DependsOn:   []string{"init"},
		Idempotency: notebook.IdempotencyUpsert,
	}, func(ctx context.Context, ec *notebook.EmitContext) (notebook.Fragment, error) {
		return notebook.Fragment{
			Text:          "INSERT INTO t (id, name) VALUES (1, 'acme')",
			Table:         "t",
			KeyColumns:    []string{"id"},
			UpdateColumns: []string{"name"},
		}, nil
	})
	d.MustCell(notebook.CellMetadata{
		Identifier:  "init",
		Caption:     "Create the customer table",
		Idempotency: notebook.IdempotencyUpsert,
	}, sqlCell("CREATE TABLE t (id INTEGER PRIMARY KEY, name TEXT)"))
	require.NoError(t, notebook.Register(d))

	e := newTestEngine(t)

	script, err := e.Generate(context.Background(), "engine-orders")
	require.NoError(t, err)
	require.Len(t, script.Statements, 2)

	text := script.Text()
	createIdx := strings.Index(text, "CREATE TABLE IF NOT EXISTS t")
	insertIdx := strings.Index(text, "INSERT INTO t")
	require.GreaterOrEqual(t, createIdx, 0, "guarded DDL expected")
	require.GreaterOrEqual(t, insertIdx, 0)
	assert.Less(t, createIdx, insertIdx)
	assert.Contains(t, text, "-- cell: init")
	assert.Contains(t, text, "-- cell: seed")
	assert.Contains(t, text, `ON CONFLICT ("id") DO UPDATE SET "name" = excluded."name"`)

	// Regeneration is byte-identical
	again, err := e.Generate(context.Background(), "engine-orders")
	require.NoError(t, err)
	assert.Equal(t, text, again.Text())

	// Run and cell state recorded
	runs, err := e.StateStore().ListRuns("engine-orders", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, state.RunStatusCompleted, runs[0].Status)

	cells, err := e.StateStore().ListCells("engine-orders")
	require.NoError(t, err)
	assert.Len(t, cells, 2)
}

func TestEngine_Generate_UnknownNotebook(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Generate(context.Background(), "no-such-notebook")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-notebook")
}

func TestEngine_Generate_FailureRecordsFailedRun(t *testing.T) {
	cause := errors.New("upstream unavailable")
	d := notebook.NewDefinition("engine-failing")
	d.MustCell(notebook.CellMetadata{Identifier: "boom"},
		func(ctx context.Context, ec *notebook.EmitContext) (notebook.Fragment, error) {
			return notebook.Fragment{}, cause
		})
	require.NoError(t, notebook.Register(d))

	e := newTestEngine(t)

	script, err := e.Generate(context.Background(), "engine-failing")
	require.Error(t, err)
	assert.Nil(t, script, "failed run produces no output")
	assert.True(t, errors.Is(err, cause))

	runs, err := e.StateStore().ListRuns("engine-failing", 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, state.RunStatusFailed, runs[0].Status)
	assert.Contains(t, runs[0].Error, "boom")
}

func TestEngine_GenerateUpserts(t *testing.T) {
	d := notebook.NewDefinition("engine-console")
	d.MustCell(notebook.CellMetadata{
		Identifier: "home",
		Kind:       notebook.KindFileUpsert,
		Path:       "console/index.sql",
	}, sqlCell("SELECT 'shell' AS component"))
	require.NoError(t, notebook.Register(d))

	e := newTestEngine(t)

	stmts, err := e.GenerateUpserts(context.Background(), "engine-console", "sqlpage_files")
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0].SQL, `"sqlpage_files"`)
	assert.Contains(t, stmts[0].SQL, `'console/index.sql'`)
}

func TestEngine_GenerateAll(t *testing.T) {
	a := notebook.NewDefinition("engine-all-a")
	a.MustCell(notebook.CellMetadata{Identifier: "x"}, sqlCell("SELECT 1"))
	require.NoError(t, notebook.Register(a))

	b := notebook.NewDefinition("engine-all-b")
	b.MustCell(notebook.CellMetadata{Identifier: "y"}, sqlCell("SELECT 2"))
	require.NoError(t, notebook.Register(b))

	e := newTestEngine(t)

	scripts, err := e.GenerateAll(context.Background(), "engine-all-a", "engine-all-b")
	require.NoError(t, err)
	require.Len(t, scripts, 2)
	for name, script := range scripts {
		assert.Equal(t, name, script.Notebook)
	}
}

func TestEngine_GenerateAll_FailureYieldsNoPartialResult(t *testing.T) {
	d := notebook.NewDefinition("engine-all-ok")
	d.MustCell(notebook.CellMetadata{Identifier: "x"}, sqlCell("SELECT 1"))
	require.NoError(t, notebook.Register(d))

	e := newTestEngine(t)

	scripts, err := e.GenerateAll(context.Background(), "engine-all-ok", "engine-all-missing")
	require.Error(t, err)
	assert.Nil(t, scripts)
}
