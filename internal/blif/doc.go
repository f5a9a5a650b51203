// Package blif reads combinational netlists in the Berkeley Logic
// Interchange Format into a graph.Graph.
//
// Only the subset needed to describe AND/OR/NOT networks is understood:
//
//	# comment               ignored to end of line
//	.model name             ignored
//	.inputs a b c           primary inputs
//	.outputs f g            primary outputs
//	.names a b f            gate f with operands a and b
//	11 1                    cover rows; the first row decides the gate kind
//	.end                    stops reading
//
// A trailing backslash continues a line. The first cover row after a
// .names line classifies the gate: a single-literal cube is an inverter, a
// cube containing a don't-care ('-') is an OR, anything else is an AND.
// Further cover rows are accepted and ignored. A .names line without
// operands describes a constant and leaves its signal unclassified.
//
// After reading, signals that never received a kind are resolved by
// graph.ResolveKinds: undriven signals become inputs, unconsumed ones become
// outputs, and the rest become wires.
//
// Every failure wraps ErrInput and names the source and line.
package blif
