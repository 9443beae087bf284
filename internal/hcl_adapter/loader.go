package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file found under paths and merges them into one
// model. Later files override settings of earlier ones; a workflow or events
// block may only be defined once.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := config.NewModel()

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, s := range root.Settings {
			mergeSettings(&model.Settings, s)
		}
		for _, e := range root.Events {
			if model.Events != nil {
				return nil, fmt.Errorf("%s: events block defined more than once", file)
			}
			events, err := translateEvents(e)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			model.Events = events
		}
		for _, w := range root.Workflows {
			if _, dup := model.Workflows[w.Name]; dup {
				return nil, fmt.Errorf("%s: workflow %q defined more than once", file, w.Name)
			}
			wf, err := translateWorkflow(w)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			model.Workflows[wf.Name] = wf
		}
	}

	logger.Debug("HCL loading complete.", "files", len(hclFiles), "workflows", len(model.Workflows), "events", model.Events != nil)
	return model, nil
}

func mergeSettings(dst *config.Settings, s *settingsBlock) {
	if s.LogLevel != "" {
		dst.LogLevel = s.LogLevel
	}
	if s.LogFormat != "" {
		dst.LogFormat = s.LogFormat
	}
	if s.Workers != 0 {
		dst.Workers = s.Workers
	}
	if s.HealthcheckPort != 0 {
		dst.HealthcheckPort = s.HealthcheckPort
	}
	if s.DOTOutput != "" {
		dst.DOTOutput = s.DOTOutput
	}
	if s.SnapshotOutput != "" {
		dst.SnapshotOutput = s.SnapshotOutput
	}
}

func translateEvents(e *eventsBlock) (*config.Events, error) {
	events := &config.Events{
		URL:                e.URL,
		Namespace:          e.Namespace,
		Event:              e.Event,
		Timeout:            config.DefaultEventTimeout,
		InsecureSkipVerify: e.InsecureSkipVerify,
	}
	if events.Namespace == "" {
		events.Namespace = "/"
	}
	if events.Event == "" {
		events.Event = "graph"
	}
	if e.Timeout != "" {
		d, err := time.ParseDuration(e.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid events timeout %q: %w", e.Timeout, err)
		}
		events.Timeout = d
	}
	return events, nil
}

func translateWorkflow(w *workflowBlock) (*config.Workflow, error) {
	wf := &config.Workflow{Name: w.Name, Entry: w.Entry}
	if wf.Entry == "" {
		wf.Entry = w.Name
	}
	if w.Args == nil {
		return wf, nil
	}

	val, diags := w.Args.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("workflow %q: failed to evaluate args: %w", w.Name, diags)
	}
	if val.IsNull() {
		return wf, nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, fmt.Errorf("workflow %q: args must be an object, got %s", w.Name, val.Type().FriendlyName())
	}
	raw, err := ctyValueToInterface(val)
	if err != nil {
		return nil, fmt.Errorf("workflow %q: %w", w.Name, err)
	}
	wf.Args = raw.(map[string]any)
	return wf, nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			add(path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(p) == ".hcl" {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return allFiles, nil
}
