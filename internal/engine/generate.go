package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/inkwell-sql/inkwell/internal/state"
	"github.com/inkwell-sql/inkwell/pkg/notebook"
)

// Generate resolves, transforms, and assembles one notebook into a script.
// The run is recorded in the state store together with per-cell content
// hashes; a failed run is recorded as failed and yields no script.
func (e *Engine) Generate(ctx context.Context, name string) (*notebook.GeneratedScript, error) {
	def, err := e.lookup(name)
	if err != nil {
		return nil, err
	}

	run, err := e.store.CreateRun(name, e.dialect.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}

	script, cells, err := e.generate(ctx, def)
	if err != nil {
		if ferr := e.store.FailRun(run.ID, err); ferr != nil {
			e.logger.Warn("failed to record failed run", "run_id", run.ID, "error", ferr)
		}
		return nil, err
	}

	for _, cell := range cells {
		if err := e.recordCell(name, cell); err != nil {
			e.logger.Warn("failed to record cell", "cell", cell.Identifier, "error", err)
		}
	}
	if err := e.store.CompleteRun(run.ID, len(script.Statements)); err != nil {
		e.logger.Warn("failed to record completed run", "run_id", run.ID, "error", err)
	}

	e.logger.Info("notebook generated",
		"notebook", name,
		"cells", len(cells),
		"statements", len(script.Statements))

	return script, nil
}

func (e *Engine) generate(ctx context.Context, def *notebook.Definition) (*notebook.GeneratedScript, []notebook.ResolvedCell, error) {
	cells, warnings, err := notebook.Resolve(ctx, def, notebook.ResolveOptions{Params: e.params})
	if err != nil {
		return nil, nil, err
	}

	script, err := notebook.Assemble(cells, e.dialect)
	if err != nil {
		return nil, nil, err
	}
	script.Notebook = def.Name()
	script.Warnings = warnings
	return script, cells, nil
}

// GenerateUpserts builds the content-storage upsert statements for one
// notebook, targeting table for cells without an explicit target.
func (e *Engine) GenerateUpserts(ctx context.Context, name, table string) ([]notebook.Statement, error) {
	def, err := e.lookup(name)
	if err != nil {
		return nil, err
	}

	cells, _, err := notebook.Resolve(ctx, def, notebook.ResolveOptions{Params: e.params})
	if err != nil {
		return nil, err
	}

	stmts, err := notebook.BuildUpserts(cells, table, e.dialect)
	if err != nil {
		return nil, err
	}

	e.logger.Info("upserts generated", "notebook", name, "statements", len(stmts))
	return stmts, nil
}

// GenerateAll generates the named notebooks, or every registered notebook
// when no names are given. Independent notebooks share no mutable state
// (the emit context is per run), so they are generated concurrently. Any
// failure cancels the remaining runs and no partial result map is returned.
func (e *Engine) GenerateAll(ctx context.Context, names ...string) (map[string]*notebook.GeneratedScript, error) {
	if len(names) == 0 {
		names = notebook.List()
	}

	var mu sync.Mutex
	scripts := make(map[string]*notebook.GeneratedScript, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		name := name
		g.Go(func() error {
			script, err := e.Generate(gctx, name)
			if err != nil {
				return err
			}
			mu.Lock()
			scripts[name] = script
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scripts, nil
}

// recordCell persists a cell's identity and content hash.
func (e *Engine) recordCell(name string, cell notebook.ResolvedCell) error {
	return e.store.UpsertCell(&state.CellRecord{
		ID:          notebook.CellID(name, cell.Identifier).String(),
		Notebook:    name,
		Identifier:  cell.Identifier,
		Kind:        string(cell.Metadata.Kind),
		Caption:     cell.Metadata.Caption,
		ContentHash: contentHash(cell.Fragment.Text),
	})
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
