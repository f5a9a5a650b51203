package schedule

import (
	"fmt"

	"github.com/vk/mlrcs/internal/node"
)

// Limits holds the number of functional units available per time step for
// each resource class.
type Limits struct {
	And int `json:"and" yaml:"and"`
	Or  int `json:"or" yaml:"or"`
	Not int `json:"not" yaml:"not"`
}

// Of returns the limit for a resource class.
func (l Limits) Of(c node.Class) int {
	switch c {
	case node.ClassAnd:
		return l.And
	case node.ClassOr:
		return l.Or
	case node.ClassNot:
		return l.Not
	}
	return 0
}

// Validate rejects negative limits. A zero limit is valid; it only becomes a
// problem when the graph contains an operation of that class.
func (l Limits) Validate() error {
	for _, c := range node.Classes {
		if l.Of(c) < 0 {
			return fmt.Errorf("%s limit must not be negative, got %d", c, l.Of(c))
		}
	}
	return nil
}

func (l Limits) String() string {
	return fmt.Sprintf("AND=%d OR=%d NOT=%d", l.And, l.Or, l.Not)
}
