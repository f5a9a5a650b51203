package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/mlrcs/internal/blif"
	"github.com/vk/mlrcs/internal/dag"
)

var (
	// ErrInvalidUsage reports bad caller input such as negative limits.
	ErrInvalidUsage = errors.New("invalid usage")
	// ErrCycleDetected reports a cyclic graph. It is the same value as
	// dag.ErrCycle.
	ErrCycleDetected = dag.ErrCycle
	// ErrResourceDeadlock reports operations that can never start because
	// their class has no units.
	ErrResourceDeadlock = errors.New("resource deadlock")
	// ErrModelInfeasible reports that the exact model has no solution,
	// which for a valid heuristic bound indicates a modeling error.
	ErrModelInfeasible = errors.New("model infeasible")
	// ErrSolverTimeout reports that the solver ran out of time without any
	// feasible schedule.
	ErrSolverTimeout = errors.New("solver timeout")
)

// ErrorKind classifies scheduling failures.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindInput
	KindInvalidUsage
	KindCycleDetected
	KindResourceDeadlock
	KindModelInfeasible
	KindSolverTimeout
	KindCanceled
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInput:
		return "InputError"
	case KindInvalidUsage:
		return "InvalidUsage"
	case KindCycleDetected:
		return "CycleDetected"
	case KindResourceDeadlock:
		return "ResourceDeadlock"
	case KindModelInfeasible:
		return "ModelInfeasible"
	case KindSolverTimeout:
		return "SolverTimeout"
	case KindCanceled:
		return "Canceled"
	case KindInternal:
		return "Internal"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// KindOf classifies err. Errors that match no sentinel are internal.
// A cycle found while reading a netlist is an input error.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, blif.ErrInput):
		return KindInput
	case errors.Is(err, ErrInvalidUsage):
		return KindInvalidUsage
	case errors.Is(err, ErrCycleDetected):
		return KindCycleDetected
	case errors.Is(err, ErrResourceDeadlock):
		return KindResourceDeadlock
	case errors.Is(err, ErrModelInfeasible):
		return KindModelInfeasible
	case errors.Is(err, ErrSolverTimeout):
		return KindSolverTimeout
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	}
	return KindInternal
}
