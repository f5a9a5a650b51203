package node

import (
	"fmt"

	"github.com/vk/mlrcs/internal/nodeid"
)

// Node is a single vertex in the netlist graph: a primary input, a primary
// output sink, a gate, or an intermediate wire.
type Node struct {
	// ID is the node's stable identity and its index in the graph arena.
	ID nodeid.ID
	// Name is the signal name from the netlist. Unique within a graph.
	Name string
	// Kind is the node's resolved role.
	Kind Kind

	// Preds lists the operand-producing nodes, in netlist order.
	Preds []nodeid.ID
	// Succs lists the consumer nodes, in netlist order.
	Succs []nodeid.ID
}

// IsOperation reports whether the node consumes a time step and a
// functional unit when scheduled.
func (n *Node) IsOperation() bool {
	return n.Kind.IsOperation()
}

// Kind distinguishes the roles a node can play in the graph.
type Kind int

const (
	// KindUnknown is the zero value. It is only legal while a graph is being
	// built; a frozen graph never contains it.
	KindUnknown Kind = iota
	// Input is a primary input, available before the first time step.
	Input
	// Output is a dedicated output sink with no gate of its own.
	Output
	// And is a conjunction gate.
	And
	// Or is a disjunction gate.
	Or
	// Not is an inverter.
	Not
	// Wire is an intermediate signal with no gate type.
	Wire
)

var kindNames = [...]string{
	KindUnknown: "UNKNOWN",
	Input:       "INPUT",
	Output:      "OUTPUT",
	And:         "AND",
	Or:          "OR",
	Not:         "NOT",
	Wire:        "WIRE",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// IsOperation reports whether nodes of this kind are schedulable.
func (k Kind) IsOperation() bool {
	_, ok := k.Class()
	return ok
}

// Class returns the resource class that executes nodes of this kind.
func (k Kind) Class() (Class, bool) {
	switch k {
	case And:
		return ClassAnd, true
	case Or:
		return ClassOr, true
	case Not:
		return ClassNot, true
	case KindUnknown, Input, Output, Wire:
		return 0, false
	}
	return 0, false
}

// Class is a kind of functional unit with its own per-step budget.
type Class int

const (
	ClassAnd Class = iota
	ClassOr
	ClassNot
)

// NumClasses is the number of resource classes.
const NumClasses = 3

// Classes lists every resource class in output order.
var Classes = [NumClasses]Class{ClassAnd, ClassOr, ClassNot}

func (c Class) String() string {
	switch c {
	case ClassAnd:
		return "AND"
	case ClassOr:
		return "OR"
	case ClassNot:
		return "NOT"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// Kind returns the gate kind executed by this class.
func (c Class) Kind() Kind {
	switch c {
	case ClassAnd:
		return And
	case ClassOr:
		return Or
	case ClassNot:
		return Not
	}
	return KindUnknown
}
