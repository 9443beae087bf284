package workflow

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskgrid/internal/graph"
	"github.com/vk/taskgrid/internal/task"
	"github.com/vk/taskgrid/internal/testutil"
)

func noop(ec *task.Context) (any, error) { return nil, nil }

func callAll(tasks ...*task.Task) task.Func {
	return func(ec *task.Context) (any, error) {
		for _, t := range tasks {
			if _, err := t.Call(ec); err != nil {
				return nil, err
			}
		}
		return "done", nil
	}
}

func status(t *testing.T, w *Workflow, tk *task.Task) graph.Status {
	t.Helper()
	s, ok := w.Graph().Status(tk.Address())
	require.True(t, ok, "node %s missing", tk.Name())
	return s
}

func TestNew_RequiresEntry(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNoEntry)
}

func TestRun_StaticDepsScenario(t *testing.T) {
	b := task.Leaf(noop, task.Named("b"))
	c := task.Leaf(noop, task.Named("c"))
	a := task.Static(callAll(b, c), []*task.Task{b, c}, nil, task.Named("a"))
	w, err := New(a)
	require.NoError(t, err)
	ctx, logs := testutil.Context(t)

	out, err := w.Run(ctx, nil)

	require.NoError(t, err)
	assert.Equal(t, "done", out)
	for _, tk := range []*task.Task{a, b, c} {
		assert.Equal(t, graph.Completed, status(t, w, tk))
	}
	for _, n := range w.Graph().Nodes() {
		assert.NotEqual(t, graph.Error, n.Status)
	}
	assert.Contains(t, logs.String(), "run_id=")
	assert.Contains(t, logs.String(), "Workflow finished")
}

func TestRun_ContractViolationScenario(t *testing.T) {
	b := task.Leaf(noop, task.Named("b"))
	c := task.Leaf(noop, task.Named("c"))
	a := task.Static(callAll(c), []*task.Task{b}, nil, task.Named("a"))
	w, err := New(a)
	require.NoError(t, err)
	ctx, logs := testutil.Context(t)

	out, err := w.Run(ctx, nil)

	assert.Nil(t, out)
	require.ErrorIs(t, err, task.ErrContractViolation)
	assert.Equal(t, graph.Error, status(t, w, c))
	assert.NotEqual(t, graph.Completed, status(t, w, c))
	assert.Contains(t, logs.String(), "Static contract violation")
}

func TestRun_FreshContractsPerRun(t *testing.T) {
	calls := 0
	b := task.Leaf(noop, task.Named("b"))
	a := task.Static(func(ec *task.Context) (any, error) {
		calls++
		return b.Call(ec)
	}, []*task.Task{b}, nil, task.Named("a"))
	w, err := New(a)
	require.NoError(t, err)
	ctx, _ := testutil.Context(t)

	_, err = w.Run(ctx, nil)
	require.NoError(t, err)
	_, err = w.Run(ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, w.Graph().Len(), "repeated runs reuse one graph")
}

func TestDryRun_RendersSpeculativeGraph(t *testing.T) {
	ran := false
	worker := task.New(func(ec *task.Context) (any, error) {
		ran = true
		return nil, nil
	}, task.Named("worker"))
	entry := task.Static(callAll(worker), []*task.Task{worker}, nil, task.Named("entry"))

	var dot bytes.Buffer
	var persisted *graph.Graph
	w, err := New(entry,
		WithSink(DOTWriter(&dot)),
		WithSink(SinkFunc(func(_ context.Context, g *graph.Graph) error {
			persisted = g
			return nil
		})),
	)
	require.NoError(t, err)
	ctx, _ := testutil.Context(t)

	require.NoError(t, w.DryRun(ctx, nil))

	assert.False(t, ran)
	assert.Same(t, w.Graph(), persisted)
	assert.Equal(t, graph.Speculated, status(t, w, worker))
	// entry -> worker and worker -> placeholder
	assert.Equal(t, 2, strings.Count(dot.String(), `[style="dashed"]`))
	assert.Contains(t, dot.String(), `label="worker_children"`)
}

func TestDryRunThenRun_PrunesPlaceholders(t *testing.T) {
	leaf := task.Leaf(noop, task.Named("leaf"))
	worker := task.New(callAll(leaf), task.Named("worker"))
	entry := task.Static(callAll(worker), []*task.Task{worker}, nil, task.Named("entry"))
	w, err := New(entry)
	require.NoError(t, err)
	ctx, _ := testutil.Context(t)

	require.NoError(t, w.DryRun(ctx, nil))
	require.Len(t, w.Graph().Children(worker.Address()), 1)

	_, err = w.Run(ctx, nil)
	require.NoError(t, err)

	children := w.Graph().Children(worker.Address())
	require.Len(t, children, 1)
	assert.Equal(t, leaf.Address(), children[0])
	for _, n := range w.Graph().Nodes() {
		assert.Equal(t, graph.Completed, n.Status, n.Address.Label())
	}
}

func TestDryRun_SinkErrorsAreJoined(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")
	entry := task.Leaf(noop, task.Named("entry"))
	w, err := New(entry,
		WithSink(SinkFunc(func(context.Context, *graph.Graph) error { return first })),
		WithSink(SinkFunc(func(context.Context, *graph.Graph) error { return second })),
	)
	require.NoError(t, err)

	err = w.DryRun(context.Background(), nil)

	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
}

func TestFileSinks(t *testing.T) {
	dir := t.TempDir()
	dotPath := filepath.Join(dir, "out", "graph.dot")
	snapPath := filepath.Join(dir, "out", "graph.yaml")
	entry := task.New(noop, task.Named("entry"))
	w, err := New(entry, WithSink(DOTFile(dotPath)), WithSink(SnapshotFile(snapPath)))
	require.NoError(t, err)

	require.NoError(t, w.DryRun(context.Background(), nil))

	dot, err := os.ReadFile(dotPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(dot), "digraph {"))

	f, err := os.Open(snapPath)
	require.NoError(t, err)
	defer f.Close()
	snap, err := graph.ReadSnapshot(f)
	require.NoError(t, err)
	restored, err := graph.FromSnapshot(snap)
	require.NoError(t, err)
	assert.Equal(t, w.Graph().DOT(), restored.DOT())
}

func TestWithObserverAndWorkers(t *testing.T) {
	var (
		mu     sync.Mutex
		events []graph.Event
	)
	sum := task.Map(func(ec *task.Context) (any, error) {
		raw, _ := ec.Arg("n")
		return len(raw.([]any)), nil
	}, "n", 2, task.Named("count"))
	w, err := New(sum,
		WithWorkers(4),
		WithWorkers(0),
		WithObserver(graph.ObserverFunc(func(e graph.Event) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, e)
		})),
	)
	require.NoError(t, err)
	assert.Equal(t, 4, w.workers)

	out, err := w.Run(context.Background(), map[string]any{"n": []any{1, 2, 3}})

	require.NoError(t, err)
	assert.Equal(t, []any{2, 1}, out)
	assert.NotEmpty(t, events)
}

func TestDryRun_BasicEntryHasSinglePlaceholderEdge(t *testing.T) {
	many := task.New(callAll(task.New(noop), task.New(noop), task.New(noop)), task.Named("many"))
	var dot bytes.Buffer
	w, err := New(many, WithSink(DOTWriter(&dot)))
	require.NoError(t, err)

	require.NoError(t, w.DryRun(context.Background(), nil))

	assert.Equal(t, 2, w.Graph().Len())
	assert.Equal(t, 1, strings.Count(dot.String(), "->"))
	assert.Contains(t, dot.String(), `n0 -> n1 [style="dashed"];`)
}
