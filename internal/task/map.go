package task

import (
	"fmt"
	"reflect"

	"golang.org/x/sync/errgroup"
)

// span is the half-open range [lo, hi) of one batch.
type span struct{ lo, hi int }

// partition splits n items into contiguous slices of ceil(n/parts) items;
// the last slice may be shorter.
func partition(n, parts int) []span {
	if n == 0 {
		return nil
	}
	if parts < 1 {
		parts = 1
	}
	size := (n + parts - 1) / parts
	out := make([]span, 0, (n+size-1)/size)
	for lo := 0; lo < n; lo += size {
		out = append(out, span{lo: lo, hi: min(lo+size, n)})
	}
	return out
}

func (t *Task) executeMap(ec *Context) (any, error) {
	logger := ec.Logger().With("task", t.addr.Label())
	if ec.DryRun() {
		logger.Debug("Map task is not expanded in a dry run")
		return nil, nil
	}

	raw, ok := ec.Arg(t.inputKey)
	if !ok {
		return nil, &Error{Task: t.addr, Err: fmt.Errorf("%w: argument %q is missing", ErrInvalidInput, t.inputKey)}
	}
	input := reflect.ValueOf(raw)
	switch input.Kind() {
	case reflect.Slice:
	case reflect.Array:
		// an array held in an interface is not addressable and cannot be sliced
		addressable := reflect.New(input.Type()).Elem()
		addressable.Set(input)
		input = addressable
	default:
		return nil, &Error{Task: t.addr, Err: fmt.Errorf("%w: argument %q is a %T, not a slice or array", ErrInvalidInput, t.inputKey, raw)}
	}

	spans := partition(input.Len(), t.concurrency)
	ec.Graph().Started(t.addr)
	logger.Info("▶️ Map task started", "items", input.Len(), "batches", len(spans), "workers", ec.run.workers)

	batches := make([]*Task, len(spans))
	for i := range spans {
		batches[i] = t.batch(i)
		ec.Graph().AddEdge(t.addr, batches[i].addr)
		ec.Graph().Scheduled(batches[i].addr)
	}

	results := make([]any, len(spans))
	eg, gctx := errgroup.WithContext(ec.ctx)
	eg.SetLimit(ec.run.workers)
	for i, s := range spans {
		bc := ec.WithArg(t.inputKey, input.Slice(s.lo, s.hi).Interface())
		bc.ctx = gctx
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := batches[i].Call(bc)
			results[i] = out
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if fault := ec.Fault(); fault != nil {
		return nil, fault
	}

	ec.Graph().Completed(t.addr)
	logger.Info("✅ Map task completed", "batches", len(spans))
	return results, nil
}
