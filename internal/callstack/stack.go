// Package callstack implements the immutable stack of active task
// invocations. Pushing returns a new Stack sharing its tail with the old
// one, so a stack value can be handed to concurrent batches safely.
package callstack

import (
	"strings"

	"github.com/vk/taskgrid/internal/nodeid"
)

// Stack is a persistent linked list of addresses. The zero value is empty.
type Stack struct {
	top   *frame
	depth int
}

type frame struct {
	addr nodeid.Address
	next *frame
}

// Push returns a stack with addr on top. s is left unchanged.
func (s Stack) Push(addr nodeid.Address) Stack {
	return Stack{top: &frame{addr: addr, next: s.top}, depth: s.depth + 1}
}

// Pop returns the stack without its top frame.
func (s Stack) Pop() Stack {
	if s.top == nil {
		return s
	}
	return Stack{top: s.top.next, depth: s.depth - 1}
}

// Depth returns the number of frames.
func (s Stack) Depth() int { return s.depth }

// Top returns the currently executing task.
func (s Stack) Top() (nodeid.Address, bool) {
	if s.top == nil {
		return nodeid.Address{}, false
	}
	return s.top.addr, true
}

// Caller returns the frame directly below the top.
func (s Stack) Caller() (nodeid.Address, bool) {
	if s.top == nil || s.top.next == nil {
		return nodeid.Address{}, false
	}
	return s.top.next.addr, true
}

// Addresses lists the frames from the entry task to the top.
func (s Stack) Addresses() []nodeid.Address {
	out := make([]nodeid.Address, s.depth)
	i := s.depth - 1
	for f := s.top; f != nil; f = f.next {
		out[i] = f.addr
		i--
	}
	return out
}

// Labels lists the frame labels from the entry task to the top.
func (s Stack) Labels() []string {
	addrs := s.Addresses()
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.Label()
	}
	return out
}

func (s Stack) String() string {
	return "[" + strings.Join(s.Labels(), " > ") + "]"
}
