// Package numbers provides a map workflow that sums a list of numbers in
// batches and then adds up the partial sums.
package numbers

import (
	"fmt"
	"reflect"

	"github.com/vk/taskgrid/internal/registry"
	"github.com/vk/taskgrid/internal/task"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// InputKey is the argument holding the numbers to sum.
const InputKey = "numbers"

// Batches is the number of slices the input is split into.
const Batches = 4

var (
	sumBatches = task.Map(sum, InputKey, Batches, task.Named("sum_batches"))
	sumTotal   = task.Static(total, []*task.Task{sumBatches}, nil, task.Named("sum_total"))
)

// Register registers the workflows with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterWorkflow("sum_batches", sumTotal)
}

func sum(ec *task.Context) (any, error) {
	raw, _ := ec.Arg(InputKey)
	return Sum(raw)
}

// total runs the batches over 1..10 unless numbers were given, then sums
// the partial results.
func total(ec *task.Context) (any, error) {
	if _, ok := ec.Arg(InputKey); !ok {
		ec = ec.WithArg(InputKey, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	}
	partials, err := sumBatches.Call(ec)
	if err != nil {
		return nil, err
	}
	ec.Logger().Info("Partial sums", "values", partials)
	return Sum(partials)
}

// Sum adds up a slice of numbers. The result is an int64 when every element
// is an integer and a float64 otherwise.
func Sum(raw any) (any, error) {
	v := reflect.ValueOf(raw)
	if v.Kind() != reflect.Slice {
		return nil, fmt.Errorf("cannot sum %T", raw)
	}

	var (
		ints     int64
		floats   float64
		hasFloat bool
	)
	for i := 0; i < v.Len(); i++ {
		el := v.Index(i)
		if el.Kind() == reflect.Interface {
			el = el.Elem()
		}
		switch el.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			ints += el.Int()
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			ints += int64(el.Uint())
		case reflect.Float32, reflect.Float64:
			floats += el.Float()
			hasFloat = true
		default:
			return nil, fmt.Errorf("element %d is not a number: %v", i, el)
		}
	}
	if hasFloat {
		return floats + float64(ints), nil
	}
	return ints, nil
}
