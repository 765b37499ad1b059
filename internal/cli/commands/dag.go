package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inkwell-sql/inkwell/pkg/notebook"
)

// NewDAGCommand creates the dag command.
func NewDAGCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dag <notebook>",
		Short: "Show a notebook's dependency graph",
		Long: `Display the dependency graph of a notebook's cells, grouped by
execution level. Cells in the same level have no ordering constraint
between them; ties break by declaration order during generation.`,
		Example: `  # Show the bootstrap notebook's graph
  inkwell dag bootstrap

  # Output as JSON
  inkwell dag bootstrap --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDAG(cmd, args[0])
		},
	}

	return cmd
}

func runDAG(cmd *cobra.Command, name string) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)

	def, ok := notebook.Get(name)
	if !ok {
		return fmt.Errorf("unknown notebook %q (available: %v)", name, notebook.List())
	}

	graph, err := notebook.DependencyGraph(def)
	if err != nil {
		return err
	}
	if hasCycle, path := graph.HasCycle(); hasCycle {
		return fmt.Errorf("notebook %q: dependency cycle: %s", name, strings.Join(path, " -> "))
	}

	levels, err := graph.GetExecutionLevels()
	if err != nil {
		return err
	}

	if cmdCtx.Cfg.OutputFormat == "json" {
		type dagNode struct {
			Cell      string   `json:"cell"`
			DependsOn []string `json:"depends_on,omitempty"`
			UsedBy    []string `json:"used_by,omitempty"`
		}
		type dagLevel struct {
			Level int       `json:"level"`
			Cells []dagNode `json:"cells"`
		}
		out := struct {
			Notebook string     `json:"notebook"`
			Levels   []dagLevel `json:"levels"`
			Cells    int        `json:"cells"`
			Edges    int        `json:"edges"`
		}{Notebook: name, Cells: graph.NodeCount(), Edges: graph.EdgeCount()}

		for i, level := range levels {
			dl := dagLevel{Level: i, Cells: make([]dagNode, 0, len(level))}
			for _, cell := range level {
				dl.Cells = append(dl.Cells, dagNode{
					Cell:      cell,
					DependsOn: graph.GetParents(cell),
					UsedBy:    graph.GetChildren(cell),
				})
			}
			out.Levels = append(out.Levels, dl)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "Dependency graph: %s\n\n", name)
	for i, level := range levels {
		_, _ = fmt.Fprintf(w, "Level %d:\n", i)
		for _, cell := range level {
			_, _ = fmt.Fprintf(w, "  %s\n", cell)
			if deps := graph.GetParents(cell); len(deps) > 0 {
				_, _ = fmt.Fprintf(w, "    depends on: %s\n", strings.Join(deps, ", "))
			}
			if children := graph.GetChildren(cell); len(children) > 0 {
				_, _ = fmt.Fprintf(w, "    used by: %s\n", strings.Join(children, ", "))
			}
		}
		_, _ = fmt.Fprintln(w)
	}
	_, _ = fmt.Fprintf(w, "Total: %d cells, %d dependencies\n", graph.NodeCount(), graph.EdgeCount())

	return nil
}
