package config

import (
	"sort"
	"time"
)

// DefaultEventTimeout bounds how long the event stream waits for a
// connection.
const DefaultEventTimeout = 5 * time.Second

// Model is the complete configuration. Zero values mean "not configured".
type Model struct {
	Settings  Settings
	Events    *Events
	Workflows map[string]*Workflow
}

// Settings holds process level options. Command line flags take precedence.
type Settings struct {
	LogLevel        string
	LogFormat       string
	Workers         int
	HealthcheckPort int
	DOTOutput       string
	SnapshotOutput  string
}

// Events configures publishing of graph events to a socket.io server.
type Events struct {
	URL                string
	Namespace          string
	Event              string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Workflow binds a configured name to a registered entry task and the
// arguments of the run.
type Workflow struct {
	Name  string
	Entry string
	Args  map[string]any
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{Workflows: make(map[string]*Workflow)}
}

// Workflow returns the configured workflow called name. Unknown names map to
// the registered entry of the same name without arguments.
func (m *Model) Workflow(name string) *Workflow {
	if m != nil {
		if wf, ok := m.Workflows[name]; ok {
			return wf
		}
	}
	return &Workflow{Name: name, Entry: name}
}

// WorkflowNames lists the configured workflows in lexical order.
func (m *Model) WorkflowNames() []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.Workflows))
	for name := range m.Workflows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
