package notebook

import "strings"

// Annotate prefixes sqlText with a deterministic comment block naming the
// cell's origin. It is a pure function of its inputs: no timestamps, no
// machine paths, so regenerating unchanged source produces byte-identical
// output suitable for diffing in version control.
func Annotate(cell ResolvedCell, sqlText string) string {
	var b strings.Builder
	b.WriteString("-- notebook: ")
	b.WriteString(cell.Source.Notebook)
	b.WriteString("\n-- cell: ")
	b.WriteString(cell.Identifier)
	if cell.Source.DeclaredBy != cell.Source.Notebook {
		b.WriteString("\n-- declared-by: ")
		b.WriteString(cell.Source.DeclaredBy)
	}
	if cell.Metadata.Caption != "" {
		b.WriteString("\n-- caption: ")
		b.WriteString(cell.Metadata.Caption)
	}
	b.WriteString("\n")
	b.WriteString(sqlText)
	return b.String()
}
