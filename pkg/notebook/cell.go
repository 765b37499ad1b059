// Package notebook provides the SQL notebook emission engine.
//
// A notebook is a named collection of cells. Each cell binds a stable
// identifier and declarative metadata (kind, caption, dependencies,
// idempotency mode) to a function that produces a SQL fragment. The engine
// resolves cells in dependency order, annotates each fragment with its
// provenance, rewrites fragments for idempotent re-execution, and assembles
// the result into a single deterministic script or a sequence of
// content-storage upserts.
package notebook

import "context"

// Kind classifies what a cell's content is.
type Kind string

const (
	// KindSQL is a SQL statement meant for direct execution.
	KindSQL Kind = "sql"
	// KindCode is non-SQL code content stored in a code-cell table.
	KindCode Kind = "code"
	// KindShellConfig is presentation wrapper configuration for generated
	// web UI content. Stored, never executed.
	KindShellConfig Kind = "shell-config"
	// KindNavigation is a menu/navigation entry. Stored, never executed.
	KindNavigation Kind = "navigation"
	// KindFileUpsert is path-addressed file content (e.g. a web UI route)
	// upserted into a file table.
	KindFileUpsert Kind = "file-upsert"
)

// Valid reports whether k is a known cell kind.
func (k Kind) Valid() bool {
	switch k {
	case KindSQL, KindCode, KindShellConfig, KindNavigation, KindFileUpsert:
		return true
	}
	return false
}

// IdempotencyMode controls how a cell's SQL is rewritten so repeated
// execution converges to the same state.
type IdempotencyMode string

const (
	// IdempotencyNone passes the fragment through unchanged.
	IdempotencyNone IdempotencyMode = "none"
	// IdempotencyUpsert guards DDL with IF NOT EXISTS and resolves insert
	// conflicts on the natural key to update-in-place.
	IdempotencyUpsert IdempotencyMode = "upsert"
	// IdempotencyReplace emits a delete-matching-key-then-insert pair.
	IdempotencyReplace IdempotencyMode = "replace"
)

// Valid reports whether m is a known idempotency mode.
func (m IdempotencyMode) Valid() bool {
	switch m {
	case IdempotencyNone, IdempotencyUpsert, IdempotencyReplace:
		return true
	}
	return false
}

// EmitMode selects which emission path a cell participates in.
type EmitMode string

const (
	// EmitExecute routes the cell into the assembled script.
	EmitExecute EmitMode = "execute"
	// EmitStore routes the cell into the persistence upsert builder.
	EmitStore EmitMode = "store"
	// EmitBoth routes the cell into both paths.
	EmitBoth EmitMode = "both"
)

// Valid reports whether m is a known emit mode.
func (m EmitMode) Valid() bool {
	switch m {
	case EmitExecute, EmitStore, EmitBoth:
		return true
	}
	return false
}

// DefaultEmitMode returns the emission path implied by a cell kind:
// plain SQL executes, everything else is stored content.
func DefaultEmitMode(k Kind) EmitMode {
	if k == KindSQL {
		return EmitExecute
	}
	return EmitStore
}

// CellMetadata is the declarative configuration attached to a cell at
// definition time.
type CellMetadata struct {
	// Identifier is the cell's stable name, unique within the notebook's
	// effective registry after inheritance merge.
	Identifier string

	// Kind classifies the cell content. Zero value defaults to KindSQL.
	Kind Kind

	// Caption is a human-readable description, embedded in provenance.
	Caption string

	// DependsOn lists identifiers of cells that must be emitted first.
	DependsOn []string

	// Idempotency selects the rewrite applied to the cell's fragment.
	// Zero value defaults to IdempotencyNone.
	Idempotency IdempotencyMode

	// Emit selects the emission path. Zero value defaults by kind.
	Emit EmitMode

	// TargetTable overrides the storage table for stored cells.
	TargetTable string

	// Path addresses file-upsert content (e.g. a web UI route). When set,
	// the storage natural key is (path) instead of (notebook, cell).
	Path string
}

// normalized returns a copy with zero-valued fields defaulted.
func (m CellMetadata) normalized() CellMetadata {
	if m.Kind == "" {
		m.Kind = KindSQL
	}
	if m.Idempotency == "" {
		m.Idempotency = IdempotencyNone
	}
	if m.Emit == "" {
		m.Emit = DefaultEmitMode(m.Kind)
	}
	return m
}

// Fragment is the structured value a cell function returns. Carrying the
// write target and natural key as data lets the idempotency transformer work
// without parsing SQL text.
type Fragment struct {
	// Text is the SQL body without a trailing statement terminator.
	// Empty for configuration-only cells.
	Text string

	// Table is the table the statement writes. Required for upsert and
	// replace idempotency on INSERT fragments.
	Table string

	// KeyColumns is the natural key the statement converges on.
	KeyColumns []string

	// KeyValues maps natural-key columns to SQL expressions identifying the
	// rows being replaced. Required for replace idempotency.
	KeyValues map[string]string

	// UpdateColumns lists the non-key columns rewritten on conflict.
	// Empty means conflicting inserts are dropped (DO NOTHING).
	UpdateColumns []string
}

// Text returns a Fragment containing only raw SQL text.
func Text(sql string) Fragment {
	return Fragment{Text: sql}
}

// CellFunc produces a cell's fragment. Invoked once per generation run,
// strictly sequentially in resolved order.
type CellFunc func(ctx context.Context, ec *EmitContext) (Fragment, error)

// SourceRef identifies where a resolved cell came from.
type SourceRef struct {
	// Notebook is the notebook the cell was resolved for.
	Notebook string
	// DeclaredBy is the notebook that declared the cell; differs from
	// Notebook when the cell was inherited from an ancestor.
	DeclaredBy string
}

// ResolvedCell is a cell after its function has been invoked on a concrete
// notebook: final metadata, fragment, and provenance source.
type ResolvedCell struct {
	Identifier string
	Metadata   CellMetadata
	Fragment   Fragment
	Source     SourceRef
}

// Executable reports whether the cell participates in the assembled script.
func (c ResolvedCell) Executable() bool {
	return c.Metadata.Emit == EmitExecute || c.Metadata.Emit == EmitBoth
}

// Stored reports whether the cell participates in persistence upserts.
func (c ResolvedCell) Stored() bool {
	return c.Metadata.Emit == EmitStore || c.Metadata.Emit == EmitBoth
}
