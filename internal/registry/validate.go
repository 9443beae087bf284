package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/ctxlog"
)

// Validate checks that every workflow configured in model points at a
// registered entry task.
func (r *Registry) Validate(ctx context.Context, model *config.Model) error {
	logger := ctxlog.FromContext(ctx)
	var errs []string

	for _, name := range model.WorkflowNames() {
		wf := model.Workflows[name]
		if _, ok := r.Lookup(wf.Entry); !ok {
			errs = append(errs, fmt.Sprintf("workflow '%s': entry '%s' is not registered", name, wf.Entry))
			continue
		}
		if _, shadows := r.Lookup(name); shadows && name != wf.Entry {
			logger.Warn("Configured workflow shadows a registered workflow of the same name.", "workflow", name, "entry", wf.Entry)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
