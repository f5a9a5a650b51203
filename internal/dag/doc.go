// Package dag holds the structural analyses that schedulers run over a frozen
// graph.Graph.
//
// # Why DAG Package Exists
//
// A netlist graph is only useful to a scheduler once a few questions have
// been answered about its shape: is it actually acyclic, how far is every
// node from the end of the network, and which operations does each
// operation really wait for once inputs and pass-through signals are
// stripped away. Those answers do not depend on resource limits or on the
// scheduling strategy, so they live here and are shared by the heuristic
// and the exact scheduler.
//
// # Analyses
//
//   - DetectCycles: three-state depth-first search over successors
//   - Priorities: longest node-count path from each node to a sink
//   - OpPredecessors: nearest operation ancestors of every operation
//   - Levels: Kahn layering, used for rendering and lower bounds
//
// All traversals are iterative with explicit stacks so that deep netlists
// (long inverter chains, ripple carries) cannot exhaust the goroutine stack.
// Results are plain slices indexed by nodeid.ID; the graph is never
// annotated, which keeps it safe to share between concurrent schedulers.
package dag
