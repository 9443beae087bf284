package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Settings  []*settingsBlock `hcl:"settings,block"`
	Events    []*eventsBlock   `hcl:"events,block"`
	Workflows []*workflowBlock `hcl:"workflow,block"`
	Remain    hcl.Body         `hcl:",remain"`
}

type settingsBlock struct {
	LogLevel        string `hcl:"log_level,optional"`
	LogFormat       string `hcl:"log_format,optional"`
	Workers         int    `hcl:"workers,optional"`
	HealthcheckPort int    `hcl:"healthcheck_port,optional"`
	DOTOutput       string `hcl:"dot_output,optional"`
	SnapshotOutput  string `hcl:"snapshot_output,optional"`
}

type eventsBlock struct {
	URL                string `hcl:"url"`
	Namespace          string `hcl:"namespace,optional"`
	Event              string `hcl:"event,optional"`
	Timeout            string `hcl:"timeout,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
}

type workflowBlock struct {
	Name  string `hcl:"name,label"`
	Entry string `hcl:"entry,optional"`
	// Args stays an expression so that any object literal is accepted.
	Args hcl.Expression `hcl:"args,optional"`
}
