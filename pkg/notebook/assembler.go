package notebook

import (
	"strings"

	"github.com/inkwell-sql/inkwell/pkg/dialect"
)

// Statement is one emittable SQL statement attributed to its cell.
type Statement struct {
	Cell string
	SQL  string
}

// GeneratedScript is the assembled output of one generation run. It is
// immutable once produced; the caller owns it.
type GeneratedScript struct {
	// Notebook is the source notebook's name.
	Notebook string

	// Statements holds the provenance-annotated, idempotency-transformed
	// statements in resolved order.
	Statements []Statement

	// Order lists every resolved cell identifier in emission order,
	// including cells that contributed no SQL body.
	Order []string

	// Warnings carries non-fatal diagnostics recorded during resolution.
	Warnings []string
}

// Text renders the script as a single SQL document: statements in resolved
// order, each closed by a terminator and separated by a blank line.
func (s *GeneratedScript) Text() string {
	parts := make([]string, len(s.Statements))
	for i, stmt := range s.Statements {
		parts[i] = stmt.SQL
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// Assemble concatenates the transformed, annotated bodies of the executable
// cells into a GeneratedScript. The resolved order is preserved exactly:
// ordering is a correctness property, since later statements may read tables
// created by earlier ones. Cells with empty bodies contribute no statement
// but still appear in Order.
func Assemble(cells []ResolvedCell, d *dialect.Dialect) (*GeneratedScript, error) {
	script := &GeneratedScript{}
	if len(cells) > 0 {
		script.Notebook = cells[0].Source.Notebook
	}

	for _, cell := range cells {
		script.Order = append(script.Order, cell.Identifier)

		if !cell.Executable() {
			continue
		}

		body, err := Transform(cell, d)
		if err != nil {
			return nil, err
		}
		if body == "" {
			// Configuration-only cell: no stray terminators
			continue
		}

		body = terminate(body)
		script.Statements = append(script.Statements, Statement{
			Cell: cell.Identifier,
			SQL:  Annotate(cell, body),
		})
	}

	return script, nil
}

// terminate ensures a statement body ends with exactly one terminator.
func terminate(body string) string {
	body = strings.TrimRight(body, " \t\n")
	if strings.HasSuffix(body, ";") {
		return body
	}
	return body + ";"
}
