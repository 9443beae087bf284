package graph

import "fmt"

// Status is the lifecycle state of a node.
type Status int

const (
	StaticKnown Status = iota + 1
	BranchPossible
	BranchNotTaken
	InProgress
	Completed
	Error
	Speculated
)

var statusNames = map[Status]string{
	StaticKnown:    "static_known",
	BranchPossible: "branch_possible",
	BranchNotTaken: "branch_not_taken",
	InProgress:     "in_progress",
	Completed:      "completed",
	Error:          "error",
	Speculated:     "speculated",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(raw string) (Status, error) {
	for s, name := range statusNames {
		if name == raw {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown node status %q", raw)
}

// tentative reports whether an edge into a node with this status is drawn
// as uncertain.
func (s Status) tentative() bool {
	return s == Speculated || s == BranchPossible || s == BranchNotTaken
}
