package notebook

import "fmt"

// EmitContext is the mutable state of one generation run. It is created by
// Resolve, passed to each cell function in turn, and discarded when the run
// ends. It is not safe for concurrent use; cell functions are invoked
// strictly sequentially.
type EmitContext struct {
	notebook string
	params   map[string]string
	warnings []string
	emitted  []string
	seen     map[string]struct{}
}

func newEmitContext(notebook string, params map[string]string) *EmitContext {
	return &EmitContext{
		notebook: notebook,
		params:   params,
		seen:     make(map[string]struct{}),
	}
}

// Notebook returns the name of the notebook being generated.
func (ec *EmitContext) Notebook() string {
	return ec.notebook
}

// Param returns a caller-supplied generation parameter, or "" if unset.
func (ec *EmitContext) Param(key string) string {
	return ec.params[key]
}

// Warnf records a non-fatal warning surfaced on the generated script.
func (ec *EmitContext) Warnf(format string, args ...any) {
	ec.warnings = append(ec.warnings, fmt.Sprintf(format, args...))
}

// Warnings returns all warnings recorded so far.
func (ec *EmitContext) Warnings() []string {
	return ec.warnings
}

// Emitted returns the identifiers of cells entered so far this run, in
// emission order. A cell is recorded before its function runs, so a cell
// function sees itself as the last entry. Later cells may rely on this to
// reference earlier output.
func (ec *EmitContext) Emitted() []string {
	return ec.emitted
}

// markEmitted records a cell invocation, reporting false on a duplicate
// identifier. Duplicates are prevented at declaration time; this is the
// defensive re-check after the inheritance merge.
func (ec *EmitContext) markEmitted(identifier string) bool {
	if _, dup := ec.seen[identifier]; dup {
		return false
	}
	ec.seen[identifier] = struct{}{}
	ec.emitted = append(ec.emitted, identifier)
	return true
}
