// Package dialect provides SQL dialect configuration for generated scripts.
//
// This package contains the public contract for dialect definitions used by
// the notebook assembler and upsert builder. Concrete dialects are registered
// from builtin.go in their init() functions.
package dialect

import (
	"fmt"
	"strings"
)

// Dialect represents a SQL dialect configuration.
type Dialect struct {
	Name string

	// DefaultSchema is the schema used when none is qualified
	// ("main" for SQLite/DuckDB, "public" for Postgres).
	DefaultSchema string

	// IdentQuote is the character used to quote identifiers.
	IdentQuote string

	// conflictClause renders the insert-conflict resolution clause.
	// Overridable per dialect; nil falls back to the standard
	// ON CONFLICT form.
	conflictClause func(d *Dialect, keyColumns, updateColumns []string) string
}

// QuoteIdent quotes an identifier for this dialect.
// Qualified names are quoted per component.
func (d *Dialect) QuoteIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		q := d.IdentQuote
		parts[i] = q + strings.ReplaceAll(p, q, q+q) + q
	}
	return strings.Join(parts, ".")
}

// QuoteLiteral quotes a string value as a SQL literal.
func (d *Dialect) QuoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// ConflictClause renders the clause appended to an INSERT so that a conflict
// on the natural key updates in place. An empty updateColumns list renders a
// DO NOTHING clause.
func (d *Dialect) ConflictClause(keyColumns, updateColumns []string) string {
	if d.conflictClause != nil {
		return d.conflictClause(d, keyColumns, updateColumns)
	}
	return standardConflictClause(d, keyColumns, updateColumns)
}

// standardConflictClause is the ON CONFLICT form shared by SQLite, DuckDB,
// and Postgres.
func standardConflictClause(d *Dialect, keyColumns, updateColumns []string) string {
	keys := make([]string, len(keyColumns))
	for i, k := range keyColumns {
		keys[i] = d.QuoteIdent(k)
	}

	if len(updateColumns) == 0 {
		return fmt.Sprintf("ON CONFLICT (%s) DO NOTHING", strings.Join(keys, ", "))
	}

	sets := make([]string, len(updateColumns))
	for i, c := range updateColumns {
		sets[i] = fmt.Sprintf("%s = excluded.%s", d.QuoteIdent(c), d.QuoteIdent(c))
	}
	return fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s",
		strings.Join(keys, ", "), strings.Join(sets, ", "))
}
