package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/inkwell-sql/inkwell/pkg/notebook"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered notebooks and their cells",
		Long: `List every registered notebook with its effective cells: identifier,
kind, idempotency mode, dependencies, and caption. Inherited cells show
the notebook that declared them.

Use --output json for machine-readable output.`,
		Example: `  # List all notebooks and cells
  inkwell list

  # List as JSON
  inkwell list --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd)
		},
	}

	return cmd
}

// cellInfo is the JSON shape of one effective cell.
type cellInfo struct {
	Identifier  string   `json:"identifier"`
	Kind        string   `json:"kind"`
	Idempotency string   `json:"idempotency"`
	DependsOn   []string `json:"depends_on,omitempty"`
	Caption     string   `json:"caption,omitempty"`
	DeclaredBy  string   `json:"declared_by,omitempty"`
}

// notebookInfo is the JSON shape of one notebook.
type notebookInfo struct {
	Name    string     `json:"name"`
	Extends string     `json:"extends,omitempty"`
	Cells   []cellInfo `json:"cells"`
}

func runList(cmd *cobra.Command) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)

	infos, err := collectNotebooks()
	if err != nil {
		return err
	}

	if cmdCtx.Cfg.OutputFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Notebook", "Cell", "Kind", "Idempotency", "Depends On", "Caption"})

	for _, nb := range infos {
		for _, c := range nb.Cells {
			name := nb.Name
			if c.DeclaredBy != "" && c.DeclaredBy != nb.Name {
				name = fmt.Sprintf("%s (from %s)", nb.Name, c.DeclaredBy)
			}
			t.AppendRow(table.Row{
				name,
				c.Identifier,
				c.Kind,
				c.Idempotency,
				strings.Join(c.DependsOn, ", "),
				c.Caption,
			})
		}
		t.AppendSeparator()
	}

	t.Render()
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d notebooks registered\n", len(infos))
	return nil
}

func collectNotebooks() ([]notebookInfo, error) {
	names := notebook.List()
	infos := make([]notebookInfo, 0, len(names))

	for _, name := range names {
		def, ok := notebook.Get(name)
		if !ok {
			continue
		}

		info := notebookInfo{Name: name}
		if p := def.Parent(); p != nil {
			info.Extends = p.Name()
		}

		ids, err := def.Identifiers()
		if err != nil {
			return nil, fmt.Errorf("notebook %q: %w", name, err)
		}
		for _, id := range ids {
			meta, _ := def.Metadata(id)
			ci := cellInfo{
				Identifier:  id,
				Kind:        string(meta.Kind),
				Idempotency: string(meta.Idempotency),
				DependsOn:   meta.DependsOn,
				Caption:     meta.Caption,
			}
			if src, ok := def.DeclaredBy(id); ok && src != name {
				ci.DeclaredBy = src
			}
			info.Cells = append(info.Cells, ci)
		}

		infos = append(infos, info)
	}

	return infos, nil
}
