// Package workflow binds an entry task to a call graph and drives real and
// dry runs of it.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vk/taskgrid/internal/contract"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/graph"
	"github.com/vk/taskgrid/internal/task"
)

// ErrNoEntry is returned by New when no entry task is given.
var ErrNoEntry = errors.New("workflow needs an entry task")

// Workflow owns one graph for the lifetime of the value. Repeated runs
// accumulate into the same graph.
type Workflow struct {
	entry   *task.Task
	graph   *graph.Graph
	workers int
	sinks   []Sink
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithWorkers bounds how many batches of a map task run concurrently.
// The default of 1 runs batches one after another in slice order.
func WithWorkers(n int) Option {
	return func(w *Workflow) {
		if n > 0 {
			w.workers = n
		}
	}
}

// WithSink adds a sink that receives the graph after every dry run.
func WithSink(s Sink) Option {
	return func(w *Workflow) {
		if s != nil {
			w.sinks = append(w.sinks, s)
		}
	}
}

// WithObserver subscribes o to graph mutations.
func WithObserver(o graph.Observer) Option {
	return func(w *Workflow) {
		w.graph.AddObserver(o)
	}
}

// New creates a workflow rooted at entry.
func New(entry *task.Task, opts ...Option) (*Workflow, error) {
	if entry == nil {
		return nil, ErrNoEntry
	}
	w := &Workflow{
		entry:   entry,
		graph:   graph.New(entry.Address()),
		workers: 1,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Entry returns the entry task.
func (w *Workflow) Entry() *task.Task { return w.entry }

// Graph returns the graph recorded so far.
func (w *Workflow) Graph() *graph.Graph { return w.graph }

// Run executes the entry task for real and returns its result.
func (w *Workflow) Run(ctx context.Context, args map[string]any) (any, error) {
	return w.invoke(ctx, args, false)
}

// DryRun explores the workflow without running any task body, then hands
// the graph to every sink.
func (w *Workflow) DryRun(ctx context.Context, args map[string]any) error {
	if _, err := w.invoke(ctx, args, true); err != nil {
		return err
	}

	var errs []error
	for _, s := range w.sinks {
		if err := s.Persist(ctx, w.graph); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *Workflow) invoke(ctx context.Context, args map[string]any, dry bool) (any, error) {
	runID := uuid.NewString()
	logger := ctxlog.FromContext(ctx).With("run_id", runID, "workflow", w.entry.Name())
	mode := "run"
	if dry {
		mode = "dry-run"
	}
	logger.Info("🚀 Starting workflow", "mode", mode, "workers", w.workers)

	ec := task.NewContext(ctxlog.WithLogger(ctx, logger), task.RunOptions{
		Graph:       w.graph,
		Constraints: contract.NewRegistry(),
		DryRun:      dry,
		RunID:       runID,
		Workers:     w.workers,
		Args:        args,
	})

	result, err := w.entry.Call(ec)
	if err == nil {
		err = ec.Fault()
	}
	if err != nil {
		logger.Error("Workflow failed", "mode", mode, "error", err)
		return nil, fmt.Errorf("workflow %s: %w", w.entry.Name(), err)
	}

	logger.Info("✅ Workflow finished", "mode", mode, "nodes", w.graph.Len())
	return result, nil
}
