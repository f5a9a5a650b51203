// internal/nodeid/table.go
package nodeid

import (
	"fmt"
	"strings"
)

// Table interns signal names into IDs. The zero value is ready to use.
// A Table is not safe for concurrent mutation; callers that share one
// across goroutines must synchronize.
type Table struct {
	ids   map[string]ID
	names []string
}

// Intern returns the ID for name, allocating the next free ID if the name
// has not been seen before. The boolean reports whether a new ID was created.
func (t *Table) Intern(name string) (ID, bool, error) {
	if err := ValidateName(name); err != nil {
		return None, false, err
	}
	if id, ok := t.ids[name]; ok {
		return id, false, nil
	}
	if t.ids == nil {
		t.ids = make(map[string]ID)
	}
	id := ID(len(t.names))
	t.ids[name] = id
	t.names = append(t.names, name)
	return id, true, nil
}

// Lookup returns the ID for an already interned name.
func (t *Table) Lookup(name string) (ID, bool) {
	id, ok := t.ids[name]
	return id, ok
}

// Name returns the name for id, or "" if id is out of range.
func (t *Table) Name(id ID) string {
	if !id.Valid() || int(id) >= len(t.names) {
		return ""
	}
	return t.names[id]
}

// Len returns the number of interned names.
func (t *Table) Len() int {
	return len(t.names)
}

// Names returns the interned names in ID order.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// ValidateName rejects names that cannot appear as a single netlist token.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("node name cannot be empty")
	}
	if strings.ContainsAny(name, " \t\r\n") {
		return fmt.Errorf("invalid node name %q: contains whitespace", name)
	}
	return nil
}
