package notebook

import (
	"context"

	"github.com/inkwell-sql/inkwell/internal/dag"
)

// ResolveOptions configures one generation run.
type ResolveOptions struct {
	// Params are caller-supplied values exposed to cell functions via
	// EmitContext.Param.
	Params map[string]string
}

// Resolve produces the notebook's cells in emission order: effective
// registry, dependency validation, cycle detection, stable topological sort,
// then strictly sequential invocation of each cell function. Ties between
// unordered cells break by declaration order so regenerating an unchanged
// notebook yields byte-identical output.
//
// Any failure aborts the whole run: no partial cell list is returned.
func Resolve(ctx context.Context, d *Definition, opts ResolveOptions) ([]ResolvedCell, []string, error) {
	entries, err := d.Effective()
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[string]*cellEntry, len(entries))
	for _, e := range entries {
		byID[e.meta.Identifier] = e
	}

	// Validate structure before invoking anything.
	g, err := DependencyGraph(d)
	if err != nil {
		return nil, nil, err
	}

	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, nil, &CycleError{Notebook: d.name, Cells: cyclePath}
	}

	sorted, err := g.TopologicalSort()
	if err != nil {
		return nil, nil, err
	}

	// Invoke cell functions one at a time in resolved order. Later cells
	// may assume earlier ones have fully completed, including side effects.
	ec := newEmitContext(d.name, opts.Params)
	cells := make([]ResolvedCell, 0, len(sorted))
	for _, node := range sorted {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		entry := byID[node.ID]
		if entry.fn == nil {
			return nil, nil, &DeclarationError{
				Notebook:   d.name,
				Identifier: entry.meta.Identifier,
				Reason:     "cell has no function bound",
			}
		}
		if !ec.markEmitted(entry.meta.Identifier) {
			return nil, nil, &DeclarationError{
				Notebook:   d.name,
				Identifier: entry.meta.Identifier,
				Reason:     "duplicate cell identifier after inheritance merge",
			}
		}

		frag, err := entry.fn(ctx, ec)
		if err != nil {
			return nil, nil, &InvocationError{
				Notebook: d.name,
				Cell:     entry.meta.Identifier,
				Err:      err,
			}
		}

		cells = append(cells, ResolvedCell{
			Identifier: entry.meta.Identifier,
			Metadata:   entry.meta,
			Fragment:   frag,
			Source: SourceRef{
				Notebook:   d.name,
				DeclaredBy: entry.declaredBy,
			},
		})
	}

	return cells, ec.Warnings(), nil
}

// DependencyGraph builds the dependency graph over the notebook's effective
// cells. Edges point from a dependency to its dependent. Unknown dependency
// names fail here; cycle detection is the caller's concern.
func DependencyGraph(d *Definition) (*dag.Graph, error) {
	entries, err := d.Effective()
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*cellEntry, len(entries))
	for _, e := range entries {
		byID[e.meta.Identifier] = e
	}

	g := dag.NewGraph()
	for _, e := range entries {
		g.AddNode(e.meta.Identifier, e)
	}
	for _, e := range entries {
		for _, dep := range e.meta.DependsOn {
			if _, known := byID[dep]; !known {
				return nil, &UnknownDependencyError{
					Notebook:   d.name,
					Cell:       e.meta.Identifier,
					Dependency: dep,
				}
			}
			if err := g.AddEdge(dep, e.meta.Identifier); err != nil {
				return nil, &CycleError{Notebook: d.name, Cells: []string{e.meta.Identifier}}
			}
		}
	}
	return g, nil
}
