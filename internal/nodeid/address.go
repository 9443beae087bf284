// internal/nodeid/address.go
package nodeid

import (
	"strconv"
	"strings"
)

const placeholderSuffix = "children"

// String serializes the Address into its canonical representation.
func (a Address) String() string {
	var sb strings.Builder
	sb.WriteString(a.Name)
	if a.Index != NoIndex {
		sb.WriteString("[" + strconv.Itoa(a.Index) + "]")
	}
	if a.Placeholder {
		sb.WriteString("." + placeholderSuffix)
	}
	if a.Site != "" {
		sb.WriteString("@" + a.Site)
	}
	return sb.String()
}

// Label is the human readable node name used in logs and diagrams:
// `sum_batches_2` for a batch, `print_brup3_children` for a placeholder.
func (a Address) Label() string {
	label := a.Name
	if a.Index != NoIndex {
		label += "_" + strconv.Itoa(a.Index)
	}
	if a.Placeholder {
		label += "_" + placeholderSuffix
	}
	return label
}

// Equal reports whether both addresses refer to the same node.
func (a Address) Equal(other Address) bool {
	return a == other
}

// IsZero reports whether the Address is unset.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Child returns the address of the i-th batch spawned by a.
func (a Address) Child(i int) Address {
	return Address{Name: a.Name, Site: a.Site, Index: i}
}

// PlaceholderChild returns the synthetic child used when a is speculated.
func (a Address) PlaceholderChild() Address {
	return Address{Name: a.Name, Site: a.Site, Index: a.Index, Placeholder: true}
}
