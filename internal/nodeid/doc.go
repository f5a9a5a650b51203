// internal/nodeid/doc.go

/*
Package nodeid provides the identity scheme for netlist nodes.

Every signal name seen while reading a netlist is interned into a dense,
zero-based ID in first-seen order. IDs double as arena indices in the
immutable graph, so schedulers can keep their private per-node state in plain
slices instead of maps keyed by pointers.
*/
package nodeid
