package inmemorytopology

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/mlrcs/internal/node"
	"github.com/vk/mlrcs/internal/nodeid"
	"github.com/vk/mlrcs/internal/topologystore"
)

// Store implements the topologystore.Store interface using slices indexed by
// node ID and a mutex for thread-safe concurrent access.
type Store struct {
	mu      sync.RWMutex
	names   nodeid.Table
	nodes   []node.Node
	edges   map[[2]nodeid.ID]struct{}
	inputs  []nodeid.ID
	outputs []nodeid.ID
	isIn    map[nodeid.ID]struct{}
	isOut   map[nodeid.ID]struct{}
}

// New creates a new, empty in-memory topology store.
func New() topologystore.Store {
	return &Store{
		edges: make(map[[2]nodeid.ID]struct{}),
		isIn:  make(map[nodeid.ID]struct{}),
		isOut: make(map[nodeid.ID]struct{}),
	}
}

// AddNode adds a node to the store, or returns the existing ID.
func (s *Store) AddNode(ctx context.Context, name string) (nodeid.ID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, created, err := s.names.Intern(name)
	if err != nil {
		return nodeid.None, false, err
	}
	if created {
		s.nodes = append(s.nodes, node.Node{ID: id, Name: name})
	}
	return id, created, nil
}

// SetKind records the resolved kind of a node.
func (s *Store) SetKind(ctx context.Context, id nodeid.ID, kind node.Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkID(id); err != nil {
		return err
	}
	s.nodes[id].Kind = kind
	return nil
}

// AddDependency creates a dependency link from one node to another.
func (s *Store) AddDependency(ctx context.Context, from, to nodeid.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkID(from); err != nil {
		return fmt.Errorf("dependency source: %w", err)
	}
	if err := s.checkID(to); err != nil {
		return fmt.Errorf("dependency target: %w", err)
	}
	if from == to {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", s.nodes[from].Name, s.nodes[from].Name)
	}

	key := [2]nodeid.ID{from, to}
	if _, exists := s.edges[key]; exists {
		return nil
	}
	s.edges[key] = struct{}{}
	s.nodes[to].Preds = append(s.nodes[to].Preds, from)
	s.nodes[from].Succs = append(s.nodes[from].Succs, to)
	return nil
}

// MarkInput appends a node to the primary input list.
func (s *Store) MarkInput(ctx context.Context, id nodeid.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkID(id); err != nil {
		return err
	}
	if _, ok := s.isIn[id]; ok {
		return nil
	}
	s.isIn[id] = struct{}{}
	s.inputs = append(s.inputs, id)
	return nil
}

// MarkOutput appends a node to the primary output list.
func (s *Store) MarkOutput(ctx context.Context, id nodeid.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkID(id); err != nil {
		return err
	}
	if _, ok := s.isOut[id]; ok {
		return nil
	}
	s.isOut[id] = struct{}{}
	s.outputs = append(s.outputs, id)
	return nil
}

// Lookup returns the ID for a name.
func (s *Store) Lookup(ctx context.Context, name string) (nodeid.ID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.names.Lookup(name)
}

// GetNode retrieves a copy of a single node.
func (s *Store) GetNode(ctx context.Context, id nodeid.ID) (node.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.checkID(id) != nil {
		return node.Node{}, false
	}
	return cloneNode(s.nodes[id]), true
}

// AllNodes returns copies of all nodes in ID order.
func (s *Store) AllNodes(ctx context.Context) []node.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]node.Node, len(s.nodes))
	for i := range s.nodes {
		nodes[i] = cloneNode(s.nodes[i])
	}
	return nodes
}

// Inputs returns the primary inputs in declaration order.
func (s *Store) Inputs(ctx context.Context) []nodeid.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]nodeid.ID(nil), s.inputs...)
}

// Outputs returns the primary outputs in declaration order.
func (s *Store) Outputs(ctx context.Context) []nodeid.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]nodeid.ID(nil), s.outputs...)
}

// DependenciesOf returns the predecessors of a node.
func (s *Store) DependenciesOf(ctx context.Context, id nodeid.ID) ([]nodeid.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkID(id); err != nil {
		return nil, err
	}
	return append([]nodeid.ID{}, s.nodes[id].Preds...), nil
}

// DependentsOf returns the successors of a node.
func (s *Store) DependentsOf(ctx context.Context, id nodeid.ID) ([]nodeid.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkID(id); err != nil {
		return nil, err
	}
	return append([]nodeid.ID{}, s.nodes[id].Succs...), nil
}

// checkID must be called with the lock held.
func (s *Store) checkID(id nodeid.ID) error {
	if !id.Valid() || int(id) >= len(s.nodes) {
		return fmt.Errorf("node %s not found in topology", id)
	}
	return nil
}

func cloneNode(n node.Node) node.Node {
	n.Preds = append([]nodeid.ID(nil), n.Preds...)
	n.Succs = append([]nodeid.ID(nil), n.Succs...)
	return n
}
