package task

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskgrid/internal/graph"
	"github.com/vk/taskgrid/internal/nodeid"
	"github.com/vk/taskgrid/internal/testutil"
)

func noop(ec *Context) (any, error) { return nil, nil }

// newRun builds a root context whose graph is rooted at entry.
func newRun(t *testing.T, entry *Task, dry bool, args map[string]any) *Context {
	t.Helper()
	ctx, _ := testutil.Context(t)
	return NewContext(ctx, RunOptions{
		Graph:  graph.New(entry.Address()),
		DryRun: dry,
		RunID:  "test",
		Args:   args,
	})
}

func statusOf(t *testing.T, ec *Context, task *Task) graph.Status {
	t.Helper()
	status, ok := ec.Graph().Status(task.Address())
	require.True(t, ok, "node %s missing", task.Name())
	return status
}

func TestNew_DerivesNameAndSite(t *testing.T) {
	tk := New(noop)

	assert.Equal(t, "noop", tk.Name())
	assert.Equal(t, KindBasic, tk.Kind())
	assert.Contains(t, tk.Address().Site, "task_test.go:")
	assert.Equal(t, nodeid.NoIndex, tk.Address().Index)
}

func TestNamed(t *testing.T) {
	tk := New(func(ec *Context) (any, error) { return nil, nil }, Named("print_brup1"))
	assert.Equal(t, "print_brup1", tk.Name())

	assert.Panics(t, func() { Named("a.b") })
	assert.Panics(t, func() { Named("") })
}

func TestSameFunctionAtTwoSitesIsTwoNodes(t *testing.T) {
	first := New(noop)
	second := New(noop)

	assert.NotEqual(t, first.Address(), second.Address())
}

// guard builds a static task that only calls dep.
func guard(dep *Task) *Task {
	return Static(func(ec *Context) (any, error) {
		return dep.Call(ec)
	}, []*Task{dep}, nil)
}

func TestCall_TasksFromOneConstructorAreDistinct(t *testing.T) {
	x := Leaf(noop, Named("x"))
	y := Leaf(noop, Named("y"))
	gx, gy := guard(x), guard(y)
	entry := Static(func(ec *Context) (any, error) {
		if _, err := gx.Call(ec); err != nil {
			return nil, err
		}
		return gy.Call(ec)
	}, []*Task{gx, gy}, nil, Named("entry"))

	require.NotEqual(t, gx.Address(), gy.Address())
	assert.Equal(t, gx.Name(), gy.Name())

	ec := newRun(t, entry, false, nil)
	_, err := entry.Call(ec)

	require.NoError(t, err)
	assert.Equal(t, []nodeid.Address{x.Address()}, ec.Graph().Children(gx.Address()))
	assert.Equal(t, []nodeid.Address{y.Address()}, ec.Graph().Children(gy.Address()))
	for _, tk := range []*Task{entry, gx, gy, x, y} {
		assert.Equal(t, graph.Completed, statusOf(t, ec, tk))
	}
}

func TestInstanceSite(t *testing.T) {
	site := "instance_site_test.go:1"

	assert.Equal(t, site, instanceSite(site))
	assert.Equal(t, site+"#2", instanceSite(site))
	assert.Equal(t, site+"#3", instanceSite(site))

	addr, err := nodeid.Parse("guard@" + site + "#2")
	require.NoError(t, err)
	assert.Equal(t, site+"#2", addr.Site)
}

func TestStatic_MergesBranchesIntoDeps(t *testing.T) {
	b := New(noop, Named("b"))
	c := New(noop, Named("c"))
	a := Static(noop, []*Task{b, c}, []*Task{c, b}, Named("a"))

	assert.Equal(t, []*Task{b, c}, a.allowed)
	assert.Equal(t, []*Task{b, c}, a.Deps())
	assert.Equal(t, []*Task{c, b}, a.Branches())
	assert.Panics(t, func() { Static(noop, []*Task{nil}, nil) })
}

func TestCall_StaticDepsCompleted(t *testing.T) {
	b := Leaf(noop, Named("b"))
	c := Leaf(noop, Named("c"))
	a := Static(func(ec *Context) (any, error) {
		if _, err := b.Call(ec); err != nil {
			return nil, err
		}
		return c.Call(ec)
	}, []*Task{b, c}, nil, Named("a"))

	ec := newRun(t, a, false, nil)
	_, err := a.Call(ec)

	require.NoError(t, err)
	for _, tk := range []*Task{a, b, c} {
		assert.Equal(t, graph.Completed, statusOf(t, ec, tk))
	}
	assert.Equal(t, []nodeid.Address{b.Address(), c.Address()}, ec.Graph().Children(a.Address()))
}

func TestCall_UndeclaredCalleeViolatesContract(t *testing.T) {
	b := Leaf(noop, Named("b"))
	called := false
	c := Leaf(func(ec *Context) (any, error) {
		called = true
		return nil, nil
	}, Named("c"))
	a := Static(func(ec *Context) (any, error) {
		return c.Call(ec)
	}, []*Task{b}, nil, Named("a"))

	ec := newRun(t, a, false, nil)
	_, err := a.Call(ec)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrContractViolation))
	var violation *ContractViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "a", violation.Caller.Name)
	assert.Equal(t, "c", violation.Callee.Name)
	assert.Equal(t, "static contract violation: a -> c", err.Error())

	assert.False(t, called)
	assert.Equal(t, graph.Error, statusOf(t, ec, c))
	assert.Equal(t, graph.InProgress, statusOf(t, ec, a), "caller status is unaffected")
	assert.Equal(t, err, ec.Fault())
}

func TestCall_SwallowedViolationStillAbortsRun(t *testing.T) {
	c := Leaf(noop, Named("c"))
	after := New(noop, Named("after"))
	a := Static(func(ec *Context) (any, error) {
		_, _ = c.Call(ec)
		return "ignored", nil
	}, nil, nil, Named("a"))
	root := New(func(ec *Context) (any, error) {
		if _, err := a.Call(ec); err != nil {
			return nil, err
		}
		return after.Call(ec)
	}, Named("root"))

	ec := newRun(t, root, false, nil)
	_, err := root.Call(ec)

	assert.ErrorIs(t, err, ErrContractViolation)
	_, err = after.Call(ec)
	assert.ErrorIs(t, err, ErrContractViolation, "calls after a fault fail fast")
	_, seen := ec.Graph().Status(after.Address())
	assert.False(t, seen)
}

func TestCall_BodyErrorIsWrappedOnce(t *testing.T) {
	boom := errors.New("boom")
	inner := New(func(ec *Context) (any, error) { return nil, boom }, Named("inner"))
	outer := New(func(ec *Context) (any, error) { return inner.Call(ec) }, Named("outer"))

	ec := newRun(t, outer, false, nil)
	_, err := outer.Call(ec)

	require.ErrorIs(t, err, boom)
	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "inner", te.Task.Name)
	assert.Equal(t, "task inner failed: boom", err.Error())
	assert.Equal(t, graph.InProgress, statusOf(t, ec, inner))
}

func TestCall_WithoutContext(t *testing.T) {
	_, err := New(noop).Call(nil)
	assert.ErrorIs(t, err, ErrNoContext)
}

func TestCall_ReturnsResultAndReadsArgs(t *testing.T) {
	double := New(func(ec *Context) (any, error) {
		v, _ := ec.Arg("x")
		return v.(int) * 2, nil
	}, Named("double"))
	root := New(func(ec *Context) (any, error) {
		return double.Call(ec.WithArg("x", 21))
	}, Named("root"))

	ec := newRun(t, root, false, map[string]any{"x": 1})
	out, err := root.Call(ec)

	require.NoError(t, err)
	assert.Equal(t, 42, out)
	v, _ := ec.Arg("x")
	assert.Equal(t, 1, v, "WithArg must not mutate the parent context")
}

func TestDryRun_BasicSpeculatesWithoutRunningBody(t *testing.T) {
	ran := false
	leafy := New(func(ec *Context) (any, error) {
		ran = true
		return nil, nil
	}, Named("leafy"))

	ec := newRun(t, leafy, true, nil)
	out, err := leafy.Call(ec)

	require.NoError(t, err)
	assert.Nil(t, out)
	assert.False(t, ran)
	assert.Equal(t, graph.Speculated, statusOf(t, ec, leafy))
	children := ec.Graph().Children(leafy.Address())
	require.Len(t, children, 1)
	assert.True(t, children[0].Placeholder)
}

func TestDryRun_StaticWalksDepsAndMarksBranches(t *testing.T) {
	ran := false
	body := func(ec *Context) (any, error) {
		ran = true
		return nil, nil
	}
	dep := New(body, Named("dep"))
	yes := Leaf(body, Named("yes"))
	no := Leaf(body, Named("no"))
	nested := Leaf(body, Named("nested"))
	chooser := Static(body, []*Task{nested}, []*Task{yes, no}, Named("chooser"))
	root := Static(body, []*Task{dep, chooser}, nil, Named("root"))

	ec := newRun(t, root, true, nil)
	_, err := root.Call(ec)

	require.NoError(t, err)
	assert.False(t, ran)
	assert.Equal(t, graph.Speculated, statusOf(t, ec, dep))
	assert.Equal(t, graph.StaticKnown, statusOf(t, ec, nested))
	assert.Equal(t, graph.BranchPossible, statusOf(t, ec, yes))
	assert.Equal(t, graph.BranchPossible, statusOf(t, ec, no))
	assert.Equal(t,
		[]nodeid.Address{nested.Address(), yes.Address(), no.Address()},
		ec.Graph().Children(chooser.Address()))
	assert.Zero(t, ec.Constraints().Len(), "dry runs declare no contracts")
}

func TestDryRun_DoesNotEnforceContracts(t *testing.T) {
	stray := New(noop, Named("stray"))
	root := Static(noop, nil, nil, Named("root"))

	ec := newRun(t, root, false, nil)
	ec.Constraints().Declare(root.Address(), nil)

	dry := NewContext(context.Background(), RunOptions{Graph: ec.Graph(), Constraints: ec.Constraints(), DryRun: true})
	// simulate stray being reached below root in a dry run
	_, err := stray.Call(dry.push(root))

	assert.NoError(t, err)
}
