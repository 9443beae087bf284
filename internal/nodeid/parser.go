// internal/nodeid/parser.go
package nodeid

import (
	"fmt"
	"regexp"
	"strconv"
)

// addressRegex parses `name[index].children@site`.
var addressRegex = regexp.MustCompile(`^([^\[\]@.]+)(?:\[(\d+)\])?(\.children)?(?:@(.+))?$`)

// isValidName checks for undesirable but technically valid names.
func isValidName(name string) bool {
	if name == "-" || name == "_" {
		return false
	}
	return true
}

// Parse creates an Address by parsing its canonical string representation.
func Parse(rawID string) (Address, error) {
	if rawID == "" {
		return Address{}, fmt.Errorf("identifier cannot be empty")
	}

	matches := addressRegex.FindStringSubmatch(rawID)
	if matches == nil {
		return Address{}, fmt.Errorf("invalid identifier format: %q", rawID)
	}

	name := matches[1]
	if !isValidName(name) {
		return Address{}, fmt.Errorf("invalid task name: %q", name)
	}

	addr := New(name, matches[4])
	if matches[2] != "" {
		index, err := strconv.Atoi(matches[2])
		if err != nil {
			// Unreachable due to regex `\d+`
			return Address{}, fmt.Errorf("internal error parsing index: %w", err)
		}
		addr.Index = index
	}
	addr.Placeholder = matches[3] != ""

	return addr, nil
}
