package task

import (
	"context"
	"log/slog"
	"maps"
	"sync"

	"github.com/vk/taskgrid/internal/callstack"
	"github.com/vk/taskgrid/internal/contract"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/graph"
)

// RunOptions configures the execution context of one run.
type RunOptions struct {
	Graph       *graph.Graph
	Constraints *contract.Registry
	DryRun      bool
	RunID       string
	// Workers bounds how many batches of a map task run at once.
	Workers int
	Args    map[string]any
}

// run is the state shared by every Context of one run.
type run struct {
	graph       *graph.Graph
	constraints *contract.Registry
	dryRun      bool
	id          string
	workers     int
	logger      *slog.Logger

	mu    sync.Mutex
	fault error
}

// Context is the execution context handed to every task body. It is
// immutable; WithArg and task calls derive new values.
type Context struct {
	ctx   context.Context
	run   *run
	stack callstack.Stack
	args  map[string]any
}

// NewContext creates the root context of a run. opts.Graph is required, a
// nil registry is replaced by an empty one.
func NewContext(ctx context.Context, opts RunOptions) *Context {
	if opts.Graph == nil {
		panic("task: run without a graph")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Constraints == nil {
		opts.Constraints = contract.NewRegistry()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Context{
		ctx: ctx,
		run: &run{
			graph:       opts.Graph,
			constraints: opts.Constraints,
			dryRun:      opts.DryRun,
			id:          opts.RunID,
			workers:     opts.Workers,
			logger:      ctxlog.FromContext(ctx),
		},
		args: maps.Clone(opts.Args),
	}
}

// Context returns the Go context of the run.
func (ec *Context) Context() context.Context { return ec.ctx }

// Logger returns the run logger.
func (ec *Context) Logger() *slog.Logger { return ec.run.logger }

// DryRun reports whether task bodies are skipped.
func (ec *Context) DryRun() bool { return ec.run.dryRun }

// RunID returns the identifier of the run.
func (ec *Context) RunID() string { return ec.run.id }

// Graph returns the graph being recorded.
func (ec *Context) Graph() *graph.Graph { return ec.run.graph }

// Constraints returns the static contracts of the run.
func (ec *Context) Constraints() *contract.Registry { return ec.run.constraints }

// Stack returns the active call chain.
func (ec *Context) Stack() callstack.Stack { return ec.stack }

// Arg returns a named argument.
func (ec *Context) Arg(key string) (any, bool) {
	v, ok := ec.args[key]
	return v, ok
}

// Args returns a copy of all named arguments.
func (ec *Context) Args() map[string]any { return maps.Clone(ec.args) }

// WithArg returns a Context with key set to value. ec is unchanged.
func (ec *Context) WithArg(key string, value any) *Context {
	args := make(map[string]any, len(ec.args)+1)
	maps.Copy(args, ec.args)
	args[key] = value

	derived := *ec
	derived.args = args
	return &derived
}

// Fault returns the error that aborted the run, if any.
func (ec *Context) Fault() error {
	ec.run.mu.Lock()
	defer ec.run.mu.Unlock()
	return ec.run.fault
}

// fail records the first fatal error of the run.
func (ec *Context) fail(err error) {
	ec.run.mu.Lock()
	defer ec.run.mu.Unlock()
	if ec.run.fault == nil {
		ec.run.fault = err
	}
}

func (ec *Context) push(t *Task) *Context {
	derived := *ec
	derived.stack = ec.stack.Push(t.addr)
	return &derived
}
