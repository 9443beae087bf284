// Package demo provides small workflows exercising every task kind except
// map: plain tasks calling each other, static tasks with declared deps, a
// branching static task and a static task that breaks its contract.
package demo

import (
	"fmt"

	"github.com/vk/taskgrid/internal/registry"
	"github.com/vk/taskgrid/internal/task"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

var (
	printBrup1           = task.New(banner("brup1"), task.Named("print_brup1"))
	printBrup2           = task.New(brup2, task.Named("print_brup2"))
	printBrup3UnknownDep = task.New(yes, task.Named("print_brup3_unknown_dep"))
	printBrup3           = task.New(brup3, task.Named("print_brup3"))
	printBrup5           = task.New(banner("brup5"), task.Named("print_brup5"))
	printBrup4           = task.Static(brup4, []*task.Task{printBrup3, printBrup5}, nil, task.Named("print_brup4"))
	printBrup6           = task.Leaf(banner("brup6"), task.Named("print_brup6"))

	doStuff  = task.New(doStuffBody, task.Named("do_stuff"))
	doStuff2 = task.Static(doStuffBody, []*task.Task{printBrup6, printBrup4, printBrup2}, nil, task.Named("do_stuff2"))

	pickBrup = task.Static(pick, nil, []*task.Task{printBrup5, printBrup6}, task.Named("pick_brup"))

	// breakContract declares print_brup6 only, but also calls print_brup4.
	breakContract = task.Static(doStuffBody, []*task.Task{printBrup6}, nil, task.Named("break_contract"))
)

// Register registers the workflows with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterWorkflow("do_stuff", doStuff)
	r.RegisterWorkflow("do_stuff2", doStuff2)
	r.RegisterWorkflow("pick_brup", pickBrup)
	r.RegisterWorkflow("break_contract", breakContract)
}

func banner(word string) task.Func {
	return func(ec *task.Context) (any, error) {
		ec.Logger().Info("*****", "brup", word)
		return true, nil
	}
}

func yes(*task.Context) (any, error) { return true, nil }

func brup2(ec *task.Context) (any, error) {
	ec.Logger().Info("*****", "brup", "brup2")
	return callAll(ec, printBrup1)
}

func brup3(ec *task.Context) (any, error) {
	ec.Logger().Info("*****", "brup", "brup3")
	return callAll(ec, printBrup3UnknownDep)
}

func brup4(ec *task.Context) (any, error) {
	ec.Logger().Info("*****", "brup", "brup4")
	return callAll(ec, printBrup3, printBrup5)
}

func doStuffBody(ec *task.Context) (any, error) {
	return callAll(ec, printBrup6, printBrup4, printBrup2)
}

// pick calls print_brup5 when the "pick" argument is 5, print_brup6 otherwise.
func pick(ec *task.Context) (any, error) {
	choice, _ := ec.Arg("pick")
	if fmt.Sprint(choice) == "5" {
		return printBrup5.Call(ec)
	}
	return printBrup6.Call(ec)
}

func callAll(ec *task.Context, tasks ...*task.Task) (any, error) {
	for _, t := range tasks {
		if _, err := t.Call(ec); err != nil {
			return nil, err
		}
	}
	return true, nil
}
