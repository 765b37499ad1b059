package notebook

import (
	"fmt"
	"strings"

	"github.com/inkwell-sql/inkwell/pkg/dialect"
)

// Transform rewrites a cell's fragment according to its declared idempotency
// mode, so that re-running the full script converges instead of erroring or
// duplicating effects. Cells with empty bodies are exempt: idempotency is
// meaningless for configuration-only cells.
func Transform(cell ResolvedCell, d *dialect.Dialect) (string, error) {
	text := strings.TrimSpace(cell.Fragment.Text)
	if text == "" {
		return "", nil
	}

	switch cell.Metadata.Idempotency {
	case IdempotencyNone, "":
		return text, nil
	case IdempotencyUpsert:
		return transformUpsert(cell, text, d)
	case IdempotencyReplace:
		return transformReplace(cell, text, d)
	default:
		return "", &TransformError{
			Notebook: cell.Source.Notebook,
			Cell:     cell.Identifier,
			Reason:   fmt.Sprintf("unknown idempotency mode %q", cell.Metadata.Idempotency),
		}
	}
}

func transformUpsert(cell ResolvedCell, text string, d *dialect.Dialect) (string, error) {
	if guarded, ok := guardDDL(text); ok {
		return guarded, nil
	}

	if hasKeywordPrefix(text, "INSERT") {
		if strings.Contains(strings.ToUpper(text), "ON CONFLICT") {
			// Already conflict-aware, leave it alone
			return text, nil
		}
		frag := cell.Fragment
		if frag.Table == "" || len(frag.KeyColumns) == 0 {
			return "", &TransformError{
				Notebook: cell.Source.Notebook,
				Cell:     cell.Identifier,
				Reason:   "upsert idempotency requires a target table and natural key columns",
			}
		}
		return text + "\n" + d.ConflictClause(frag.KeyColumns, frag.UpdateColumns), nil
	}

	return "", &TransformError{
		Notebook: cell.Source.Notebook,
		Cell:     cell.Identifier,
		Reason:   "upsert idempotency applies only to INSERT statements and guardable DDL",
	}
}

func transformReplace(cell ResolvedCell, text string, d *dialect.Dialect) (string, error) {
	frag := cell.Fragment
	if frag.Table == "" || len(frag.KeyColumns) == 0 {
		return "", &TransformError{
			Notebook: cell.Source.Notebook,
			Cell:     cell.Identifier,
			Reason:   "replace idempotency requires a target table and natural key columns",
		}
	}

	preds := make([]string, len(frag.KeyColumns))
	for i, col := range frag.KeyColumns {
		val, ok := frag.KeyValues[col]
		if !ok {
			return "", &TransformError{
				Notebook: cell.Source.Notebook,
				Cell:     cell.Identifier,
				Reason:   fmt.Sprintf("replace idempotency is missing a key value for column %q", col),
			}
		}
		preds[i] = fmt.Sprintf("%s = %s", d.QuoteIdent(col), val)
	}

	del := fmt.Sprintf("DELETE FROM %s WHERE %s;",
		d.QuoteIdent(frag.Table), strings.Join(preds, " AND "))
	return del + "\n" + text, nil
}

// guardableDDL lists statement heads that accept an IF NOT EXISTS guard.
var guardableDDL = []string{
	"CREATE TABLE",
	"CREATE UNIQUE INDEX",
	"CREATE INDEX",
	"CREATE VIEW",
	"CREATE SCHEMA",
}

// guardDDL inserts IF NOT EXISTS after a DDL statement head. Returns the
// original text when the guard is already present, and ok=false when the
// statement is not guardable DDL.
func guardDDL(text string) (string, bool) {
	upper := strings.ToUpper(text)
	for _, head := range guardableDDL {
		if !hasKeywordSequence(upper, head) {
			continue
		}
		rest := strings.TrimLeft(upper[len(head):], " \t\n")
		if strings.HasPrefix(rest, "IF NOT EXISTS") {
			return text, true
		}
		return text[:len(head)] + " IF NOT EXISTS" + text[len(head):], true
	}
	return "", false
}

// hasKeywordPrefix reports whether text begins with the keyword followed by
// whitespace.
func hasKeywordPrefix(text, keyword string) bool {
	upper := strings.ToUpper(text)
	if !strings.HasPrefix(upper, keyword) {
		return false
	}
	rest := upper[len(keyword):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\n'
}

// hasKeywordSequence reports whether upper begins with the multi-word
// keyword sequence, tolerating nothing but single spaces between words as
// produced by guardableDDL entries.
func hasKeywordSequence(upper, head string) bool {
	if !strings.HasPrefix(upper, head) {
		return false
	}
	rest := upper[len(head):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\n'
}
