package task

import (
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/vk/taskgrid/internal/nodeid"
)

// Kind tags the variant of a Task.
type Kind int

const (
	KindBasic Kind = iota
	KindStatic
	KindMap
	KindBatch
)

func (k Kind) String() string {
	switch k {
	case KindBasic:
		return "basic"
	case KindStatic:
		return "static"
	case KindMap:
		return "map"
	case KindBatch:
		return "batch"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Func is the body of a task. Arguments are read from the Context.
type Func func(ec *Context) (any, error)

// Task is an immutable description of a unit of work. Tasks are usually
// declared once as package level variables and reused across runs.
type Task struct {
	kind Kind
	addr nodeid.Address
	fn   Func

	// static tasks only
	deps     []*Task
	branches []*Task
	// allowed is deps followed by branches, deduplicated.
	allowed []*Task

	// map tasks only
	inputKey    string
	concurrency int
}

// Option customizes a Task at construction.
type Option func(*Task)

// Named overrides the name derived from the wrapped function. Names may not
// contain '.', '@', '[' or ']'.
func Named(name string) Option {
	if name == "" || strings.ContainsAny(name, ".@[]") {
		panic(fmt.Sprintf("task: invalid name %q", name))
	}
	return func(t *Task) {
		t.addr.Name = name
	}
}

// New wraps fn as a Basic task.
func New(fn Func, opts ...Option) *Task {
	return build(KindBasic, fn, callerSite(), opts)
}

// Static wraps fn as a task that may only call deps and branches. Deps are
// calls that always happen, branches are mutually exclusive alternatives.
func Static(fn Func, deps, branches []*Task, opts ...Option) *Task {
	t := build(KindStatic, fn, callerSite(), opts)
	t.deps = checkTasks(t, "dependency", deps)
	t.branches = checkTasks(t, "branch", branches)
	t.allowed = merge(t.deps, t.branches)
	return t
}

// Leaf wraps fn as a Static task that calls nothing.
func Leaf(fn Func, opts ...Option) *Task {
	return build(KindStatic, fn, callerSite(), opts)
}

// Map wraps fn as a task that fans out over the collection stored under
// inputKey. fn is called once per slice with the slice stored under the
// same key. concurrency below 1 is treated as 1.
func Map(fn Func, inputKey string, concurrency int, opts ...Option) *Task {
	if inputKey == "" {
		panic("task: map task needs an input key")
	}
	if concurrency < 1 {
		concurrency = 1
	}
	t := build(KindMap, fn, callerSite(), opts)
	t.inputKey = inputKey
	t.concurrency = concurrency
	return t
}

func build(kind Kind, fn Func, site string, opts []Option) *Task {
	if fn == nil {
		panic("task: nil function")
	}
	t := &Task{kind: kind, fn: fn, addr: nodeid.New(funcName(fn), instanceSite(site))}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the task name.
func (t *Task) Name() string { return t.addr.Name }

// Kind returns the task variant.
func (t *Task) Kind() Kind { return t.kind }

// Address returns the graph identity of the task.
func (t *Task) Address() nodeid.Address { return t.addr }

// Deps returns the declared dependencies of a static task.
func (t *Task) Deps() []*Task { return append([]*Task(nil), t.deps...) }

// Branches returns the declared branches of a static task.
func (t *Task) Branches() []*Task { return append([]*Task(nil), t.branches...) }

// InputKey returns the collection key of a map task.
func (t *Task) InputKey() string { return t.inputKey }

// Concurrency returns the requested parallelism of a map task.
func (t *Task) Concurrency() int { return t.concurrency }

func (t *Task) String() string {
	return t.kind.String() + " task " + t.addr.String()
}

// batch returns the i-th batch of a map task.
func (t *Task) batch(i int) *Task {
	return &Task{kind: KindBatch, addr: t.addr.Child(i), fn: t.fn}
}

func (t *Task) allowedAddresses() []nodeid.Address {
	out := make([]nodeid.Address, len(t.allowed))
	for i, a := range t.allowed {
		out[i] = a.addr
	}
	return out
}

func checkTasks(owner *Task, what string, tasks []*Task) []*Task {
	for i, t := range tasks {
		if t == nil {
			panic(fmt.Sprintf("task: %s #%d of %s is nil", what, i, owner.addr.Name))
		}
	}
	return append([]*Task(nil), tasks...)
}

func merge(deps, branches []*Task) []*Task {
	seen := make(map[nodeid.Address]bool, len(deps)+len(branches))
	var out []*Task
	for _, list := range [][]*Task{deps, branches} {
		for _, t := range list {
			if seen[t.addr] {
				continue
			}
			seen[t.addr] = true
			out = append(out, t)
		}
	}
	return out
}

// funcName returns the bare name of fn, e.g. `printBrup1`.
func funcName(fn Func) string {
	full := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name()
	full = strings.TrimSuffix(full, "-fm")
	if i := strings.Index(full, "["); i >= 0 {
		full = full[:i]
	}
	parts := strings.Split(full, ".")
	return parts[len(parts)-1]
}

// sites counts the tasks constructed at each call site.
var sites = struct {
	sync.Mutex
	seen map[string]int
}{seen: make(map[string]int)}

// instanceSite makes site unique per constructed task. The first task built
// at a site keeps `file.go:line`, later ones (a constructor called from a
// helper or a loop) become `file.go:line#2`, `file.go:line#3` and so on.
func instanceSite(site string) string {
	sites.Lock()
	defer sites.Unlock()
	sites.seen[site]++
	if n := sites.seen[site]; n > 1 {
		return site + "#" + strconv.Itoa(n)
	}
	return site
}

// callerSite returns `file.go:line` of the code calling the exported
// constructor.
func callerSite() string {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return ""
	}
	return filepath.Base(file) + ":" + strconv.Itoa(line)
}
