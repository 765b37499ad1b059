package notebook

import (
	"fmt"
	"strings"
)

// DeclarationError reports invalid cell registration, detected at
// definition time before any generation is attempted.
type DeclarationError struct {
	Notebook   string
	Identifier string
	Reason     string
}

func (e *DeclarationError) Error() string {
	return fmt.Sprintf("notebook %q: cell %q: %s", e.Notebook, e.Identifier, e.Reason)
}

// UnknownDependencyError reports a dependsOn reference to an identifier that
// is not in the notebook's effective registry.
type UnknownDependencyError struct {
	Notebook   string
	Cell       string
	Dependency string
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("notebook %q: cell %q depends on unknown cell %q",
		e.Notebook, e.Cell, e.Dependency)
}

// CycleError reports a dependency cycle. Cells lists every identifier in the
// cycle, in traversal order.
type CycleError struct {
	Notebook string
	Cells    []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("notebook %q: dependency cycle: %s",
		e.Notebook, strings.Join(e.Cells, " -> "))
}

// InvocationError reports a cell function failure. The underlying cause is
// preserved for errors.Is/errors.As.
type InvocationError struct {
	Notebook string
	Cell     string
	Err      error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("notebook %q: cell %q failed: %v", e.Notebook, e.Cell, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// TransformError reports an idempotency rewrite that lacks required
// fragment structure (e.g. upsert without a natural key).
type TransformError struct {
	Notebook string
	Cell     string
	Reason   string
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("notebook %q: cell %q: %s", e.Notebook, e.Cell, e.Reason)
}
