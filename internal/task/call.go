package task

import (
	"fmt"
	"time"
)

// Call invokes t within ec. The caller is the task on top of ec's stack, if
// any. Once a run has faulted every further call fails with the same error.
func (t *Task) Call(ec *Context) (any, error) {
	if ec == nil {
		return nil, ErrNoContext
	}
	if err := ec.Fault(); err != nil {
		return nil, err
	}

	cc := ec.push(t)
	logger := ec.Logger()
	logger.Debug("Current stack", "stack", cc.stack.Labels())

	if caller, ok := cc.stack.Caller(); ok {
		ec.Graph().AddEdge(caller, t.addr)
		if !ec.DryRun() && !ec.Constraints().Permits(caller, t.addr) {
			ec.Graph().Error(t.addr)
			err := &ContractViolationError{Caller: caller, Callee: t.addr}
			ec.fail(err)
			logger.Error("⛔ Static contract violation", "caller", caller.Label(), "callee", t.addr.Label())
			return nil, err
		}
	}

	result, err := t.execute(cc)
	logger.Debug("Current stack", "stack", ec.stack.Labels())
	return result, err
}

func (t *Task) execute(ec *Context) (any, error) {
	switch t.kind {
	case KindStatic:
		return t.executeStatic(ec)
	case KindMap:
		return t.executeMap(ec)
	case KindBasic, KindBatch:
		return t.executeBasic(ec)
	default:
		return nil, fmt.Errorf("task %s: unknown kind %s", t.addr.Label(), t.kind)
	}
}

func (t *Task) executeBasic(ec *Context) (any, error) {
	logger := ec.Logger().With("task", t.addr.Label())
	if ec.DryRun() {
		ec.Graph().Speculate(t.addr)
		logger.Debug("🔮 Task speculated")
		return nil, nil
	}

	ec.Graph().Started(t.addr)
	logger.Info("▶️ Task started", "kind", t.kind.String())
	start := time.Now()

	result, err := t.fn(ec)
	if err != nil {
		logger.Error("❌ Task failed", "error", err)
		return nil, wrap(t.addr, err)
	}
	// a body may swallow the error of a faulted callee; the run is over anyway
	if fault := ec.Fault(); fault != nil {
		return nil, fault
	}

	ec.Graph().Completed(t.addr)
	logger.Info("✅ Task completed", "duration", time.Since(start))
	return result, nil
}

func (t *Task) executeStatic(ec *Context) (any, error) {
	if !ec.DryRun() {
		ec.Constraints().Declare(t.addr, t.allowedAddresses())
		return t.executeBasic(ec)
	}

	for _, dep := range t.allowed {
		if _, err := dep.Call(ec); err != nil {
			return nil, err
		}
	}
	for _, branch := range t.branches {
		ec.Graph().Branch(branch.addr)
	}
	return nil, nil
}
