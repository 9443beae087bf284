// Package ui renders human readable run output.
package ui

import (
	"github.com/fatih/color"
	"github.com/vk/taskgrid/internal/graph"
)

// Sprint color functions for building styled strings.
var (
	Bold      = color.New(color.Bold).SprintFunc()
	Dim       = color.New(color.Faint).SprintFunc()
	Green     = color.New(color.FgGreen).SprintFunc()
	Red       = color.New(color.FgRed).SprintFunc()
	Yellow    = color.New(color.FgYellow).SprintFunc()
	Cyan      = color.New(color.FgCyan).SprintFunc()
	BoldGreen = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed   = color.New(color.Bold, color.FgRed).SprintFunc()
)

// StatusIcon returns a colored icon for a node status.
func StatusIcon(s graph.Status) string {
	switch s {
	case graph.Completed:
		return Green("✓")
	case graph.InProgress:
		return Yellow("●")
	case graph.Error:
		return Red("✗")
	case graph.Speculated:
		return Cyan("?")
	case graph.BranchPossible:
		return Cyan("◇")
	case graph.BranchNotTaken:
		return Dim("○")
	default:
		return Dim("·")
	}
}
