package notebook

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textCell(sql string) CellFunc {
	return func(ctx context.Context, ec *EmitContext) (Fragment, error) {
		return Text(sql), nil
	}
}

func TestDefinition_Cell(t *testing.T) {
	d := NewDefinition("orders")

	err := d.Cell(CellMetadata{Identifier: "init"}, textCell("CREATE TABLE t (id INT)"))
	require.NoError(t, err)

	ids, err := d.Identifiers()
	require.NoError(t, err)
	assert.Equal(t, []string{"init"}, ids)

	meta, ok := d.Metadata("init")
	require.True(t, ok)
	// Zero values default
	assert.Equal(t, KindSQL, meta.Kind)
	assert.Equal(t, IdempotencyNone, meta.Idempotency)
	assert.Equal(t, EmitExecute, meta.Emit)
}

func TestDefinition_Cell_DuplicateIdentifier(t *testing.T) {
	d := NewDefinition("orders")

	require.NoError(t, d.Cell(CellMetadata{Identifier: "x"}, textCell("SELECT 1")))

	err := d.Cell(CellMetadata{Identifier: "x"}, textCell("SELECT 2"))
	require.Error(t, err)

	var declErr *DeclarationError
	require.ErrorAs(t, err, &declErr)
	assert.Equal(t, "x", declErr.Identifier)
	assert.Contains(t, declErr.Error(), "duplicate")
}

func TestDefinition_Cell_MissingIdentifier(t *testing.T) {
	d := NewDefinition("orders")

	err := d.Cell(CellMetadata{}, textCell("SELECT 1"))
	require.Error(t, err)
}

func TestDefinition_Cell_InvalidKind(t *testing.T) {
	d := NewDefinition("orders")

	err := d.Cell(CellMetadata{Identifier: "x", Kind: Kind("spreadsheet")}, textCell("SELECT 1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spreadsheet")
}

func TestDefinition_Cell_InvalidIdempotency(t *testing.T) {
	d := NewDefinition("orders")

	err := d.Cell(CellMetadata{Identifier: "x", Idempotency: IdempotencyMode("merge")}, textCell("SELECT 1"))
	require.Error(t, err)
}

func TestDefinition_Cell_InvalidEmitMode(t *testing.T) {
	d := NewDefinition("orders")

	// A typo'd emit mode must fail at declaration time; otherwise the cell
	// would be neither executable nor stored and silently vanish from both
	// emission paths.
	err := d.Cell(CellMetadata{Identifier: "x", Emit: EmitMode("exec")}, textCell("SELECT 1"))
	require.Error(t, err)

	var declErr *DeclarationError
	require.ErrorAs(t, err, &declErr)
	assert.Equal(t, "x", declErr.Identifier)
	assert.Contains(t, declErr.Error(), "exec")
}

func TestDefinition_MustCell_Panics(t *testing.T) {
	d := NewDefinition("orders")
	d.MustCell(CellMetadata{Identifier: "x"}, textCell("SELECT 1"))

	assert.Panics(t, func() {
		d.MustCell(CellMetadata{Identifier: "x"}, textCell("SELECT 2"))
	})
}

func TestDefinition_Effective_Inheritance(t *testing.T) {
	parent := NewDefinition("base")
	parent.MustCell(CellMetadata{Identifier: "init", Caption: "parent init"}, textCell("CREATE TABLE p (id INT)"))
	parent.MustCell(CellMetadata{Identifier: "seed"}, textCell("INSERT INTO p VALUES (1)"))

	child := NewDefinition("child", Extends(parent))
	child.MustCell(CellMetadata{Identifier: "init", Caption: "child init"}, textCell("CREATE TABLE c (id INT)"))
	child.MustCell(CellMetadata{Identifier: "extra"}, textCell("SELECT 1"))

	ids, err := child.Identifiers()
	require.NoError(t, err)
	// Overridden cell keeps the position where the identifier first appeared
	assert.Equal(t, []string{"init", "seed", "extra"}, ids)

	meta, ok := child.Metadata("init")
	require.True(t, ok)
	assert.Equal(t, "child init", meta.Caption, "child wins on identifier collision")

	// Parent definition is unaffected
	parentMeta, ok := parent.Metadata("init")
	require.True(t, ok)
	assert.Equal(t, "parent init", parentMeta.Caption)
}

func TestDefinition_Effective_GrandparentChain(t *testing.T) {
	grand := NewDefinition("grand")
	grand.MustCell(CellMetadata{Identifier: "a", Caption: "grand"}, textCell("SELECT 1"))

	parent := NewDefinition("parent", Extends(grand))
	parent.MustCell(CellMetadata{Identifier: "a", Caption: "parent"}, textCell("SELECT 2"))

	child := NewDefinition("child", Extends(parent))

	meta, ok := child.Metadata("a")
	require.True(t, ok)
	assert.Equal(t, "parent", meta.Caption, "closest ancestor wins")
}

func TestRegister_Duplicate(t *testing.T) {
	require.NoError(t, Register(NewDefinition("registry-dup-test")))

	err := Register(NewDefinition("registry-dup-test"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestGet_Unknown(t *testing.T) {
	_, ok := Get("no-such-notebook")
	assert.False(t, ok)
}

func TestDefaultEmitMode(t *testing.T) {
	assert.Equal(t, EmitExecute, DefaultEmitMode(KindSQL))
	assert.Equal(t, EmitStore, DefaultEmitMode(KindCode))
	assert.Equal(t, EmitStore, DefaultEmitMode(KindShellConfig))
	assert.Equal(t, EmitStore, DefaultEmitMode(KindNavigation))
	assert.Equal(t, EmitStore, DefaultEmitMode(KindFileUpsert))
}
