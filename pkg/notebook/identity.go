package notebook

import "github.com/google/uuid"

// namespaceCellIdentity is the UUIDv5 namespace for deterministic cell
// identities, derived from a canonical string so that the same
// (notebook, cell) pair yields the same UUID in every process.
var namespaceCellIdentity = uuid.NewSHA1(uuid.NameSpaceURL, []byte("inkwell.dev/cell-identity/v1"))

// CellID returns the deterministic UUID for a cell, derived from its
// notebook name and identifier. Used as a stable surrogate key when persisting
// emitted cells.
func CellID(notebook, identifier string) uuid.UUID {
	return uuid.NewSHA1(namespaceCellIdentity, []byte(notebook+"\x00"+identifier))
}
