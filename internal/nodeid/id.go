// internal/nodeid/id.go
package nodeid

import "strconv"

// ID is the stable identity of a node within one graph.
type ID int32

// None marks the absence of a node.
const None ID = -1

// Valid reports whether the ID refers to a node slot.
func (id ID) Valid() bool {
	return id >= 0
}

// String renders the ID as "#n", or "#none" for None.
func (id ID) String() string {
	if !id.Valid() {
		return "#none"
	}
	return "#" + strconv.Itoa(int(id))
}
