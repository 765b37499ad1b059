// Package bootstrap registers the builtin notebooks: the kernel notebook
// that creates the code-notebook storage tables and seeds the kernel row,
// and the console notebook that stores the web console's shell, navigation,
// and pages. Importing this package (typically for its side effects) makes
// them available to the CLI.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/inkwell-sql/inkwell/pkg/notebook"
)

// Builtin notebook names.
const (
	KernelNotebook  = "bootstrap"
	ConsoleNotebook = "console"
)

// KernelID identifies the SQL kernel seeded by the bootstrap notebook.
const KernelID = "sql"

var (
	// Kernel is the bootstrap notebook definition, exported so downstream
	// notebooks can extend it.
	Kernel = notebook.NewDefinition(KernelNotebook)

	// Console is the console notebook definition.
	Console = notebook.NewDefinition(ConsoleNotebook, notebook.Extends(Kernel))
)

func init() {
	declareKernel(Kernel)
	declareConsole(Console)

	notebook.MustRegister(Kernel)
	notebook.MustRegister(Console)
}

// declareKernel declares the storage DDL and the kernel seed row. Every
// statement is idempotent so the bootstrap script can run on every startup.
func declareKernel(d *notebook.Definition) {
	d.MustCell(notebook.CellMetadata{
		Identifier:  "kernel_table",
		Caption:     "Kernel registry table",
		Idempotency: notebook.IdempotencyUpsert,
	}, func(ctx context.Context, ec *notebook.EmitContext) (notebook.Fragment, error) {
		return notebook.Text(`CREATE TABLE kernel (
  kernel_id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  mime_type TEXT NOT NULL
)`), nil
	})

	d.MustCell(notebook.CellMetadata{
		Identifier:  "cell_table",
		Caption:     "Code notebook cell storage",
		DependsOn:   []string{"kernel_table"},
		Idempotency: notebook.IdempotencyUpsert,
	}, func(ctx context.Context, ec *notebook.EmitContext) (notebook.Fragment, error) {
		return notebook.Text(`CREATE TABLE code_notebook_cell (
  notebook TEXT NOT NULL,
  cell TEXT NOT NULL,
  kind TEXT NOT NULL,
  caption TEXT,
  contents TEXT NOT NULL,
  PRIMARY KEY (notebook, cell)
)`), nil
	})

	d.MustCell(notebook.CellMetadata{
		Identifier:  "files_table",
		Caption:     "Path-addressed page storage",
		Idempotency: notebook.IdempotencyUpsert,
	}, func(ctx context.Context, ec *notebook.EmitContext) (notebook.Fragment, error) {
		return notebook.Text(`CREATE TABLE sqlpage_files (
  path TEXT PRIMARY KEY,
  contents TEXT NOT NULL
)`), nil
	})

	d.MustCell(notebook.CellMetadata{
		Identifier:  "kernel_seed",
		Caption:     "Register the SQL kernel",
		DependsOn:   []string{"kernel_table"},
		Idempotency: notebook.IdempotencyUpsert,
	}, func(ctx context.Context, ec *notebook.EmitContext) (notebook.Fragment, error) {
		return notebook.Fragment{
			Text: fmt.Sprintf(
				"INSERT INTO kernel (kernel_id, name, mime_type) VALUES ('%s', 'SQL', 'application/sql')",
				KernelID),
			Table:         "kernel",
			KeyColumns:    []string{"kernel_id"},
			UpdateColumns: []string{"name", "mime_type"},
		}, nil
	})
}

// declareConsole declares the console's stored content: shell configuration,
// navigation entries, and the path-addressed pages. None of it executes; it
// all lands in storage tables via upserts.
func declareConsole(d *notebook.Definition) {
	d.MustCell(notebook.CellMetadata{
		Identifier: "shell",
		Kind:       notebook.KindShellConfig,
		Caption:    "Console shell configuration",
	}, func(ctx context.Context, ec *notebook.EmitContext) (notebook.Fragment, error) {
		title := ec.Param("console_title")
		if title == "" {
			title = "Inkwell Console"
		}
		return notebook.Text(fmt.Sprintf(
			"SELECT 'shell' AS component, '%s' AS title, 'book' AS icon", title)), nil
	})

	d.MustCell(notebook.CellMetadata{
		Identifier: "nav_home",
		Kind:       notebook.KindNavigation,
		Caption:    "Navigation: home",
		DependsOn:  []string{"shell"},
	}, func(ctx context.Context, ec *notebook.EmitContext) (notebook.Fragment, error) {
		return notebook.Text("SELECT 'Home' AS title, '/' AS link, 1 AS position"), nil
	})

	d.MustCell(notebook.CellMetadata{
		Identifier: "nav_notebooks",
		Kind:       notebook.KindNavigation,
		Caption:    "Navigation: notebooks",
		DependsOn:  []string{"shell"},
	}, func(ctx context.Context, ec *notebook.EmitContext) (notebook.Fragment, error) {
		return notebook.Text("SELECT 'Notebooks' AS title, '/notebooks' AS link, 2 AS position"), nil
	})

	d.MustCell(notebook.CellMetadata{
		Identifier:  "page_home",
		Kind:        notebook.KindFileUpsert,
		Caption:     "Console home page",
		Path:        "console/index.sql",
		TargetTable: "sqlpage_files",
		DependsOn:   []string{"nav_home"},
	}, func(ctx context.Context, ec *notebook.EmitContext) (notebook.Fragment, error) {
		return notebook.Text(`SELECT 'list' AS component, 'Notebooks' AS title;
SELECT notebook AS title, '/notebooks/' || notebook AS link
FROM code_notebook_cell
GROUP BY notebook
ORDER BY notebook`), nil
	})

	d.MustCell(notebook.CellMetadata{
		Identifier:  "page_cells",
		Kind:        notebook.KindFileUpsert,
		Caption:     "Cell listing page",
		Path:        "console/notebooks/cells.sql",
		TargetTable: "sqlpage_files",
		DependsOn:   []string{"nav_notebooks"},
	}, func(ctx context.Context, ec *notebook.EmitContext) (notebook.Fragment, error) {
		return notebook.Text(`SELECT 'table' AS component, TRUE AS sort;
SELECT cell, kind, caption
FROM code_notebook_cell
WHERE notebook = $notebook
ORDER BY cell`), nil
	})
}
