package notebook

import (
	"fmt"
	"sort"
	"sync"
)

// cellEntry binds a cell's metadata to its function and records where and in
// what order it was declared.
type cellEntry struct {
	meta       CellMetadata
	fn         CellFunc
	declaredBy string
}

// Definition is a notebook type: a named, ordered set of cell declarations,
// optionally extending a parent definition. Definitions are built once
// (typically in init()) and never mutated afterwards.
type Definition struct {
	name   string
	parent *Definition

	cells map[string]*cellEntry
	order []string

	effectiveOnce sync.Once
	effective     []*cellEntry
	effectiveErr  error
}

// DefinitionOption configures a Definition.
type DefinitionOption func(*Definition)

// Extends declares the parent whose cells this notebook inherits.
// Child declarations win on identifier collision.
func Extends(parent *Definition) DefinitionOption {
	return func(d *Definition) {
		d.parent = parent
	}
}

// NewDefinition creates an empty notebook definition.
func NewDefinition(name string, opts ...DefinitionOption) *Definition {
	d := &Definition{
		name:  name,
		cells: make(map[string]*cellEntry),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the notebook's name.
func (d *Definition) Name() string {
	return d.name
}

// Parent returns the parent definition, or nil.
func (d *Definition) Parent() *Definition {
	return d.parent
}

// Cell declares a cell on this notebook. Declaring the same identifier twice
// on one notebook is a declaration error, surfaced immediately rather than
// at generation time. Re-declaring an identifier a parent already declared
// is an override, not an error.
func (d *Definition) Cell(meta CellMetadata, fn CellFunc) error {
	if meta.Identifier == "" {
		return &DeclarationError{Notebook: d.name, Reason: "cell identifier is required"}
	}

	meta = meta.normalized()

	if !meta.Kind.Valid() {
		return &DeclarationError{
			Notebook:   d.name,
			Identifier: meta.Identifier,
			Reason:     fmt.Sprintf("unknown cell kind %q", meta.Kind),
		}
	}
	if !meta.Idempotency.Valid() {
		return &DeclarationError{
			Notebook:   d.name,
			Identifier: meta.Identifier,
			Reason:     fmt.Sprintf("unknown idempotency mode %q", meta.Idempotency),
		}
	}
	if !meta.Emit.Valid() {
		return &DeclarationError{
			Notebook:   d.name,
			Identifier: meta.Identifier,
			Reason:     fmt.Sprintf("unknown emit mode %q", meta.Emit),
		}
	}
	if _, dup := d.cells[meta.Identifier]; dup {
		return &DeclarationError{
			Notebook:   d.name,
			Identifier: meta.Identifier,
			Reason:     "duplicate cell identifier",
		}
	}

	d.cells[meta.Identifier] = &cellEntry{meta: meta, fn: fn, declaredBy: d.name}
	d.order = append(d.order, meta.Identifier)
	return nil
}

// MustCell is Cell for init()-time declarations; it panics on a
// declaration error.
func (d *Definition) MustCell(meta CellMetadata, fn CellFunc) {
	if err := d.Cell(meta, fn); err != nil {
		panic(err)
	}
}

// Effective returns the inheritance-merged cell list: ancestor declarations
// first, overlaid by descendants, closest-ancestor-wins on collision. An
// overridden cell keeps the position where its identifier first appeared.
// Computed once and cached.
func (d *Definition) Effective() ([]*cellEntry, error) {
	d.effectiveOnce.Do(func() {
		d.effective, d.effectiveErr = d.merge()
	})
	return d.effective, d.effectiveErr
}

func (d *Definition) merge() ([]*cellEntry, error) {
	// Collect the ancestor chain root-first.
	var chain []*Definition
	seen := make(map[string]struct{})
	for def := d; def != nil; def = def.parent {
		if _, dup := seen[def.name]; dup {
			return nil, fmt.Errorf("notebook %q: inheritance cycle through %q", d.name, def.name)
		}
		seen[def.name] = struct{}{}
		chain = append([]*Definition{def}, chain...)
	}

	merged := make(map[string]*cellEntry)
	var order []string
	for _, def := range chain {
		for _, id := range def.order {
			if _, exists := merged[id]; !exists {
				order = append(order, id)
			}
			merged[id] = def.cells[id]
		}
	}

	result := make([]*cellEntry, len(order))
	for i, id := range order {
		result[i] = merged[id]
	}
	return result, nil
}

// Identifiers returns the effective cell identifiers in declaration order.
func (d *Definition) Identifiers() ([]string, error) {
	entries, err := d.Effective()
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.meta.Identifier
	}
	return ids, nil
}

// Metadata returns the effective metadata for one cell.
func (d *Definition) Metadata(identifier string) (CellMetadata, bool) {
	entries, err := d.Effective()
	if err != nil {
		return CellMetadata{}, false
	}
	for _, e := range entries {
		if e.meta.Identifier == identifier {
			return e.meta, true
		}
	}
	return CellMetadata{}, false
}

// DeclaredBy returns the name of the notebook that declared the effective
// version of a cell. For inherited cells this is an ancestor's name.
func (d *Definition) DeclaredBy(identifier string) (string, bool) {
	entries, err := d.Effective()
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if e.meta.Identifier == identifier {
			return e.declaredBy, true
		}
	}
	return "", false
}

// Notebook registry. Registration happens during single-threaded module
// initialization; the lock exists so concurrent late registration fails
// loudly via the duplicate check instead of racing.
var (
	notebooksMu sync.RWMutex
	notebooks   = make(map[string]*Definition)
)

// Register adds a definition to the process-wide registry. Registering two
// notebooks with the same name is an error.
func Register(d *Definition) error {
	notebooksMu.Lock()
	defer notebooksMu.Unlock()
	if _, dup := notebooks[d.name]; dup {
		return fmt.Errorf("notebook %q already registered", d.name)
	}
	notebooks[d.name] = d
	return nil
}

// MustRegister is Register for init() use; it panics on error.
func MustRegister(d *Definition) {
	if err := Register(d); err != nil {
		panic(err)
	}
}

// Get returns a registered notebook by name.
func Get(name string) (*Definition, bool) {
	notebooksMu.RLock()
	defer notebooksMu.RUnlock()
	d, ok := notebooks[name]
	return d, ok
}

// List returns all registered notebook names (sorted).
func List() []string {
	notebooksMu.RLock()
	defer notebooksMu.RUnlock()
	names := make([]string, 0, len(notebooks))
	for name := range notebooks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
