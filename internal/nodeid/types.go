// internal/nodeid/types.go
package nodeid

// NoIndex marks an Address that does not belong to a batch.
const NoIndex = -1

// Address identifies a node in the call graph. It is comparable and can be
// used directly as a map key.
type Address struct {
	// Name is the task name, e.g. `print_brup1`.
	Name string
	// Site is the declaration site, typically `file.go:line`. Tasks built
	// again at the same line get `#2`, `#3`, ... appended.
	Site string
	// Index is the batch number for map children, NoIndex otherwise.
	Index int
	// Placeholder is set for the synthetic child that stands in for the
	// unknown callees of a speculated task.
	Placeholder bool
}

// New returns an Address for a plain task.
func New(name, site string) Address {
	return Address{Name: name, Site: site, Index: NoIndex}
}
