// Package graph provides the immutable dependency graph consumed by the
// schedulers.
//
// # Why Graph Package Exists
//
// Parsers build netlists incrementally in a topologystore.Store, where
// names are referenced before they are defined and kinds are resolved late.
// Schedulers need the opposite: a finished structure they can index
// directly and read from several goroutines without locks. Freeze is the
// single hand-over point between the two worlds.
//
// # Representation
//
// Nodes live in one contiguous arena owned by the Graph and are addressed by
// nodeid.ID, which is the node's index in that arena:
//
//	┌──────────────────────────────────────────┐
//	│ nodes[0] nodes[1] nodes[2] ... nodes[n-1] │
//	└──────────────────────────────────────────┘
//	      ▲        Preds / Succs are ID slices,
//	      └──────  never pointers or ownership.
//
// Every per-node fact a scheduler computes (priority, start time, usage) is
// stored by the scheduler in its own slice indexed by ID, never on the Node.
// That is what allows several schedulers to analyze one Graph concurrently.
//
// # Guarantees After Freeze
//
//   - Every node has a resolved kind (no node.KindUnknown)
//   - Input nodes have no predecessors
//   - Edges are mutual: p in Preds(n) if and only if n in Succs(p)
//   - Names are unique and map one-to-one to IDs
//
// Acyclicity is checked by dag.DetectCycles, which netlist readers call
// after freezing; the priority computation detects cycles on its own as well.
package graph
