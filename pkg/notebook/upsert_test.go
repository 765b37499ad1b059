package notebook

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpserts_CellKey(t *testing.T) {
	d := NewDefinition("console")
	d.MustCell(CellMetadata{Identifier: "routes", Kind: KindCode, Caption: "Route table"},
		textCell("SELECT 'routes'"))

	cells, _, err := Resolve(context.Background(), d, ResolveOptions{})
	require.NoError(t, err)

	stmts, err := BuildUpserts(cells, "code_notebook_cell", sqliteDialect(t))
	require.NoError(t, err)
	require.Len(t, stmts, 1)

	sql := stmts[0].SQL
	assert.Contains(t, sql, `INSERT INTO "code_notebook_cell"`)
	assert.Contains(t, sql, `'console'`)
	assert.Contains(t, sql, `'routes'`)
	assert.Contains(t, sql, `ON CONFLICT ("notebook", "cell") DO UPDATE SET`)
	assert.Contains(t, sql, `"contents" = excluded."contents"`)
	assert.Contains(t, sql, "-- notebook: console", "stored contents carry provenance")
}

func TestBuildUpserts_PathKey(t *testing.T) {
	d := NewDefinition("console")
	d.MustCell(CellMetadata{Identifier: "index", Kind: KindFileUpsert, Path: "console/index.sql"},
		textCell("SELECT 'shell' AS component"))

	cells, _, err := Resolve(context.Background(), d, ResolveOptions{})
	require.NoError(t, err)

	stmts, err := BuildUpserts(cells, "sqlpage_files", sqliteDialect(t))
	require.NoError(t, err)
	require.Len(t, stmts, 1)

	sql := stmts[0].SQL
	assert.Contains(t, sql, `'console/index.sql'`)
	assert.Contains(t, sql, `ON CONFLICT ("path") DO UPDATE SET "contents" = excluded."contents"`)
	assert.NotContains(t, sql, `"kind"`, "path-addressed rows carry only path and contents")
}

func TestBuildUpserts_TargetTableOverride(t *testing.T) {
	d := NewDefinition("console")
	d.MustCell(CellMetadata{Identifier: "a", Kind: KindCode, TargetTable: "custom_cells"}, textCell("SELECT 1"))
	d.MustCell(CellMetadata{Identifier: "b", Kind: KindCode}, textCell("SELECT 2"))

	cells, _, err := Resolve(context.Background(), d, ResolveOptions{})
	require.NoError(t, err)

	stmts, err := BuildUpserts(cells, "default_cells", sqliteDialect(t))
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0].SQL, `"custom_cells"`)
	assert.Contains(t, stmts[1].SQL, `"default_cells"`)
}

func TestBuildUpserts_NoTable(t *testing.T) {
	d := NewDefinition("console")
	d.MustCell(CellMetadata{Identifier: "a", Kind: KindCode}, textCell("SELECT 1"))

	cells, _, err := Resolve(context.Background(), d, ResolveOptions{})
	require.NoError(t, err)

	_, err = BuildUpserts(cells, "", sqliteDialect(t))
	require.Error(t, err)

	var trErr *TransformError
	require.ErrorAs(t, err, &trErr)
	assert.Equal(t, "a", trErr.Cell)
}

func TestBuildUpserts_SkipsExecuteOnlyCells(t *testing.T) {
	d := NewDefinition("orders")
	d.MustCell(CellMetadata{Identifier: "ddl"}, textCell("CREATE TABLE t (id INT)"))
	d.MustCell(CellMetadata{Identifier: "page", Kind: KindCode}, textCell("SELECT 1"))

	cells, _, err := Resolve(context.Background(), d, ResolveOptions{})
	require.NoError(t, err)

	stmts, err := BuildUpserts(cells, "cells", sqliteDialect(t))
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, "page", stmts[0].Cell)
}

func TestBuildUpserts_QuotesEmbeddedQuotes(t *testing.T) {
	d := NewDefinition("console")
	d.MustCell(CellMetadata{Identifier: "a", Kind: KindCode, Caption: "it's quoted"},
		textCell("SELECT 'o''clock'"))

	cells, _, err := Resolve(context.Background(), d, ResolveOptions{})
	require.NoError(t, err)

	stmts, err := BuildUpserts(cells, "cells", sqliteDialect(t))
	require.NoError(t, err)
	assert.Contains(t, stmts[0].SQL, `'it''s quoted'`)
}
