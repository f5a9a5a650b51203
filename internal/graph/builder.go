package graph

import (
	"context"
	"fmt"

	"github.com/vk/mlrcs/internal/inmemorytopology"
	"github.com/vk/mlrcs/internal/node"
	"github.com/vk/mlrcs/internal/nodeid"
	"github.com/vk/mlrcs/internal/topologystore"
)

// Builder assembles a Graph programmatically. Methods chain; the first error
// is kept and reported by Build.
//
//	g, err := graph.NewBuilder().
//		Input("a").Input("b").
//		Gate("x", node.And, "a", "b").
//		Output("x").
//		Build(ctx)
type Builder struct {
	ctx   context.Context
	store topologystore.Store
	err   error
}

// NewBuilder returns a Builder backed by a fresh in-memory topology store.
func NewBuilder() *Builder {
	return &Builder{ctx: context.Background(), store: inmemorytopology.New()}
}

// Input declares a primary input.
func (b *Builder) Input(name string) *Builder {
	id := b.add(name)
	if b.err == nil {
		b.err = b.store.SetKind(b.ctx, id, node.Input)
	}
	if b.err == nil {
		b.err = b.store.MarkInput(b.ctx, id)
	}
	return b
}

// Output designates an existing or future node as a primary output. A node
// that never receives a kind of its own becomes a dedicated output sink.
func (b *Builder) Output(name string) *Builder {
	id := b.add(name)
	if b.err == nil {
		b.err = b.store.MarkOutput(b.ctx, id)
	}
	if b.err == nil {
		if n, ok := b.store.GetNode(b.ctx, id); ok && n.Kind == node.KindUnknown {
			b.err = b.store.SetKind(b.ctx, id, node.Output)
		}
	}
	return b
}

// Gate defines name as a node of the given kind fed by operands. Operands
// that were not declared yet are created and resolved at Build time.
func (b *Builder) Gate(name string, kind node.Kind, operands ...string) *Builder {
	id := b.add(name)
	if b.err == nil {
		b.err = b.store.SetKind(b.ctx, id, kind)
	}
	for _, op := range operands {
		from := b.add(op)
		if b.err == nil {
			b.err = b.store.AddDependency(b.ctx, from, id)
		}
	}
	return b
}

// Edge adds a raw dependency between two nodes, creating them if needed.
// It exists for tests that need shapes gates cannot express, such as cycles.
func (b *Builder) Edge(from, to string) *Builder {
	f := b.add(from)
	t := b.add(to)
	if b.err == nil {
		b.err = b.store.AddDependency(b.ctx, f, t)
	}
	return b
}

// Build resolves remaining kinds and freezes the graph.
func (b *Builder) Build(ctx context.Context) (*Graph, error) {
	if b.err != nil {
		return nil, fmt.Errorf("building graph: %w", b.err)
	}
	if err := ResolveKinds(ctx, b.store); err != nil {
		return nil, fmt.Errorf("building graph: %w", err)
	}
	return Freeze(ctx, b.store)
}

func (b *Builder) add(name string) nodeid.ID {
	if b.err != nil {
		return nodeid.None
	}
	id, _, err := b.store.AddNode(b.ctx, name)
	if err != nil {
		b.err = err
	}
	return id
}
