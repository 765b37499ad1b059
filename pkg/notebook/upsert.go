package notebook

import (
	"fmt"
	"strings"

	"github.com/inkwell-sql/inkwell/pkg/dialect"
)

// Storage table columns written by BuildUpserts.
const (
	colNotebook = "notebook"
	colCell     = "cell"
	colKind     = "kind"
	colCaption  = "caption"
	colPath     = "path"
	colContents = "contents"
)

// BuildUpserts builds one upsert statement per stored cell, writing the
// cell's identity and provenance-annotated content into its storage table.
// The natural key is (notebook, cell), or (path) for path-addressed
// file-upsert cells, so repeated generation replaces rather than duplicates
// rows.
//
// Statements for different cells are independent and may be executed in any
// relative order, but each row write must be atomic: the executing layer is
// expected to apply per-statement transactional semantics so a partially
// written row is never observable.
func BuildUpserts(cells []ResolvedCell, defaultTable string, d *dialect.Dialect) ([]Statement, error) {
	var stmts []Statement
	for _, cell := range cells {
		if !cell.Stored() {
			continue
		}

		table := cell.Metadata.TargetTable
		if table == "" {
			table = defaultTable
		}
		if table == "" {
			return nil, &TransformError{
				Notebook: cell.Source.Notebook,
				Cell:     cell.Identifier,
				Reason:   "stored cell has no target table",
			}
		}

		contents := Annotate(cell, strings.TrimSpace(cell.Fragment.Text))

		var sql string
		if cell.Metadata.Path != "" {
			sql = pathUpsert(cell, table, contents, d)
		} else {
			sql = cellUpsert(cell, table, contents, d)
		}

		stmts = append(stmts, Statement{Cell: cell.Identifier, SQL: sql})
	}
	return stmts, nil
}

// cellUpsert writes content keyed by (notebook, cell).
func cellUpsert(cell ResolvedCell, table, contents string, d *dialect.Dialect) string {
	cols := []string{colNotebook, colCell, colKind, colCaption, colContents}
	vals := []string{
		d.QuoteLiteral(cell.Source.Notebook),
		d.QuoteLiteral(cell.Identifier),
		d.QuoteLiteral(string(cell.Metadata.Kind)),
		d.QuoteLiteral(cell.Metadata.Caption),
		d.QuoteLiteral(contents),
	}
	return insertConflict(d, table, cols, vals,
		[]string{colNotebook, colCell},
		[]string{colKind, colCaption, colContents})
}

// pathUpsert writes path-addressed content keyed by (path).
func pathUpsert(cell ResolvedCell, table, contents string, d *dialect.Dialect) string {
	cols := []string{colPath, colContents}
	vals := []string{
		d.QuoteLiteral(cell.Metadata.Path),
		d.QuoteLiteral(contents),
	}
	return insertConflict(d, table, cols, vals,
		[]string{colPath},
		[]string{colContents})
}

func insertConflict(d *dialect.Dialect, table string, cols, vals, key, update []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = d.QuoteIdent(c)
	}
	return fmt.Sprintf("INSERT INTO %s (%s)\nVALUES (%s)\n%s;",
		d.QuoteIdent(table),
		strings.Join(quoted, ", "),
		strings.Join(vals, ", "),
		d.ConflictClause(key, update))
}
