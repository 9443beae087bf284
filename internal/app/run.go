package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/eventstream"
	"github.com/vk/taskgrid/internal/ui"
	"github.com/vk/taskgrid/internal/workflow"
)

// ErrUnknownWorkflow is returned when a workflow name resolves to nothing.
var ErrUnknownWorkflow = errors.New("unknown workflow")

// Run executes the named workflow, for real or as a dry run, and prints a
// summary of the resulting graph.
func (a *App) Run(ctx context.Context, name string, dryRun bool) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "workflow", name, "dry_run", dryRun)

	wfConfig := a.model.Workflow(name)
	entry, ok := a.registry.Lookup(wfConfig.Entry)
	if !ok {
		return fmt.Errorf("%w: %s (registered: %v)", ErrUnknownWorkflow, name, a.registry.Names())
	}

	if a.config.HealthcheckPort > 0 {
		if err := a.startHealthcheckServer(a.config.HealthcheckPort); err != nil {
			return err
		}
		defer a.closeHealthcheckServer(ctx)
	}

	opts := []workflow.Option{
		workflow.WithWorkers(a.config.Workers),
		workflow.WithObserver(a.metrics),
	}
	if a.model.Events != nil {
		pub, err := eventstream.Dial(ctx, a.model.Events)
		if err != nil {
			a.logger.Warn("Event stream unavailable, continuing without it.", "error", err)
		} else {
			pub.SetWorkflow(name)
			defer pub.Close()
			opts = append(opts, workflow.WithObserver(pub))
		}
	}
	if a.config.DOTOutput != "" {
		opts = append(opts, workflow.WithSink(workflow.DOTFile(a.config.DOTOutput)))
	} else {
		opts = append(opts, workflow.WithSink(workflow.DOTWriter(a.outW)))
	}
	if a.config.SnapshotOutput != "" {
		opts = append(opts, workflow.WithSink(workflow.SnapshotFile(a.config.SnapshotOutput)))
	}

	wf, err := workflow.New(entry, opts...)
	if err != nil {
		return err
	}

	if dryRun {
		err = wf.DryRun(ctx, wfConfig.Args)
		a.metrics.ObserveRun("dry-run", err)
	} else {
		var result any
		result, err = wf.Run(ctx, wfConfig.Args)
		a.metrics.ObserveRun("run", err)
		if err == nil {
			a.logger.Info("🏁 Workflow result", "workflow", name, "result", result)
		}
		if a.config.SnapshotOutput != "" {
			if serr := workflow.SnapshotFile(a.config.SnapshotOutput).Persist(ctx, wf.Graph()); serr != nil {
				err = errors.Join(err, serr)
			}
		}
	}

	fmt.Fprintln(a.outW)
	ui.Summary(a.outW, wf.Graph(), err)

	a.logger.Debug("App.Run method finished.")
	return err
}

// List writes the registered and configured workflows to w.
func (a *App) List(w io.Writer) {
	fmt.Fprintln(w, ui.Bold("Registered workflows:"))
	for _, name := range a.registry.Names() {
		entry, _ := a.registry.Lookup(name)
		fmt.Fprintf(w, "  %s %s\n", name, ui.Dim("("+entry.Kind().String()+")"))
	}

	configured := a.model.WorkflowNames()
	if len(configured) == 0 {
		return
	}
	fmt.Fprintln(w, ui.Bold("Configured workflows:"))
	for _, name := range configured {
		wf := a.model.Workflows[name]
		fmt.Fprintf(w, "  %s %s\n", name, ui.Dim("-> "+wf.Entry))
	}
}
