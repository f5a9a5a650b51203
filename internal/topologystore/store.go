// Package topologystore defines the interface for accumulating the structure
// of a netlist while it is being read.
//
// # Why Topology Store Exists
//
// Netlist formats reference signals before they are defined: a gate can
// consume a wire whose driver appears fifty lines later, and an output can be
// declared long before the gate that drives it. Readers therefore need a
// mutable, order-tolerant place to put nodes and edges, while schedulers need
// the opposite: a frozen, index-addressed graph that never changes under
// them.
//
// The topology store is the mutable half of that split:
//   - **Write phase:** parsers add nodes by name, connect them, and resolve
//     kinds as directives are read
//   - **Freeze:** graph.Freeze copies the store into an immutable arena
//   - **Read phase:** schedulers only ever see the frozen graph
//
// # Lifecycle and Usage
//
// A store is created per netlist, populated by a single reader, frozen once,
// and discarded. Implementations are nevertheless required to be safe for
// concurrent use so that readers for multi-file netlists can populate one
// store from several goroutines.
package topologystore

import (
	"context"

	"github.com/vk/mlrcs/internal/node"
	"github.com/vk/mlrcs/internal/nodeid"
)

// Store is the interface for managing the build-time topology of a netlist.
//
// The store is responsible for:
//   - **Nodes**: every named signal, with its (possibly still unresolved) kind
//   - **Edges**: operand relationships, kept mutual (preds and succs)
//   - **Designations**: the ordered primary input and output lists
//
// # Thread-Safety Requirements
//
// Implementations MUST be thread-safe for concurrent reads and writes.
//
// # Typical Implementation
//
// See internal/inmemorytopology for the reference in-memory implementation.
type Store interface {
	// AddNode registers a node by name and returns its ID.
	//
	// Adding an existing name is idempotent: the existing ID is returned and
	// the boolean is false. New nodes start with node.KindUnknown.
	AddNode(ctx context.Context, name string) (nodeid.ID, bool, error)

	// SetKind records the resolved kind of a node.
	SetKind(ctx context.Context, id nodeid.ID, kind node.Kind) error

	// AddDependency records that 'to' consumes the value produced by 'from'.
	//
	// Both nodes must exist. Self edges are rejected. Adding the same edge
	// twice is idempotent so that a gate listing one operand twice still
	// yields a single dependency.
	AddDependency(ctx context.Context, from, to nodeid.ID) error

	// MarkInput appends a node to the ordered primary input list. Repeated
	// calls for the same node are ignored.
	MarkInput(ctx context.Context, id nodeid.ID) error

	// MarkOutput appends a node to the ordered primary output list. Repeated
	// calls for the same node are ignored.
	MarkOutput(ctx context.Context, id nodeid.ID) error

	// Lookup returns the ID for a name, if present.
	Lookup(ctx context.Context, name string) (nodeid.ID, bool)

	// GetNode returns a snapshot copy of a node.
	GetNode(ctx context.Context, id nodeid.ID) (node.Node, bool)

	// AllNodes returns snapshot copies of every node in ID order.
	AllNodes(ctx context.Context) []node.Node

	// Inputs returns the primary inputs in declaration order.
	Inputs(ctx context.Context) []nodeid.ID

	// Outputs returns the primary outputs in declaration order.
	Outputs(ctx context.Context) []nodeid.ID

	// DependenciesOf returns the predecessors of a node in insertion order.
	DependenciesOf(ctx context.Context, id nodeid.ID) ([]nodeid.ID, error)

	// DependentsOf returns the successors of a node in insertion order.
	DependentsOf(ctx context.Context, id nodeid.ID) ([]nodeid.ID, error)
}
