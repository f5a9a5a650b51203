// Package scheduler assigns the operations of a logic network to time steps
// under per-step resource limits.
//
// # Why Scheduler Exists
//
// A combinational network can evaluate many gates at once, but only as many
// of each kind as there are functional units. The scheduler decides which
// gate starts at which step so that every gate runs after the gates it
// consumes, no step exceeds the units of any class, and the total number of
// steps (the latency) is as small as the chosen strategy can make it.
//
// Two strategies implement the Scheduler interface:
//   - **Heuristic:** list scheduling by critical-path priority. Fast,
//     deterministic, not necessarily optimal.
//   - **Exact:** a time-indexed 0-1 model solved through milp.Solver, bounded
//     and warm-started by the heuristic. Optimal when the solver finishes
//     within its time limit.
//
// # How the Heuristic Works
//
// The heuristic advances one step at a time:
//  1. Collect ready operations: unscheduled, with every operation they
//     depend on already placed at an earlier step
//  2. Split them by resource class
//  3. Order each class by priority, highest first, then by node ID
//  4. Start as many as the class limit allows
//  5. Advance to the next step until nothing is left
//
// A step that starts nothing while work remains can only mean a class with
// pending work has no units; that is reported as ErrResourceDeadlock
// instead of looping forever.
//
// # Relationship with Other Components
//
//   - **graph:** read-only input, shared safely between concurrent schedulers
//   - **dag:** priorities, operation predecessors and bounds
//   - **schedule:** the result type and its verification
//   - **milp:** the solver capability used by Exact
//
// # Errors
//
// Failures wrap one of the sentinel errors of this package (or
// blif.ErrInput for netlist problems); KindOf classifies any error into an
// ErrorKind for reporting and exit codes.
package scheduler
