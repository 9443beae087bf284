package task

import (
	"errors"
	"fmt"

	"github.com/vk/taskgrid/internal/nodeid"
)

var (
	// ErrContractViolation matches every *ContractViolationError.
	ErrContractViolation = errors.New("static contract violation")
	// ErrInvalidInput is returned when a map task cannot read its collection.
	ErrInvalidInput = errors.New("invalid map input")
	// ErrNoContext is returned when a task is called without a Context.
	ErrNoContext = errors.New("task called without execution context")
)

// ContractViolationError reports a real call from a static task to a task
// outside its declared deps and branches.
type ContractViolationError struct {
	Caller nodeid.Address
	Callee nodeid.Address
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrContractViolation, e.Caller.Label(), e.Callee.Label())
}

func (e *ContractViolationError) Unwrap() error { return ErrContractViolation }

// Error wraps a failure returned by a task body. It is attached once, at the
// task that failed, and passed through unchanged by its callers.
type Error struct {
	Task nodeid.Address
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("task %s failed: %v", e.Task.Label(), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// wrap attaches the failing task to err unless an earlier frame already did.
func wrap(addr nodeid.Address, err error) error {
	var te *Error
	if errors.As(err, &te) || errors.Is(err, ErrContractViolation) {
		return err
	}
	return &Error{Task: addr, Err: err}
}
