package graph

import (
	"context"

	"github.com/vk/mlrcs/internal/ctxlog"
	"github.com/vk/mlrcs/internal/node"
	"github.com/vk/mlrcs/internal/topologystore"
)

// ResolveKinds assigns a kind to every node still marked node.KindUnknown:
// nodes without predecessors become inputs (and are designated as such),
// nodes without successors become outputs (likewise designated), and
// everything else becomes a wire.
func ResolveKinds(ctx context.Context, store topologystore.Store) error {
	logger := ctxlog.FromContext(ctx)

	resolved := 0
	for _, n := range store.AllNodes(ctx) {
		if n.Kind != node.KindUnknown {
			continue
		}

		var kind node.Kind
		switch {
		case len(n.Preds) == 0:
			kind = node.Input
			if err := store.MarkInput(ctx, n.ID); err != nil {
				return err
			}
		case len(n.Succs) == 0:
			kind = node.Output
			if err := store.MarkOutput(ctx, n.ID); err != nil {
				return err
			}
		default:
			kind = node.Wire
		}
		if err := store.SetKind(ctx, n.ID, kind); err != nil {
			return err
		}
		logger.Debug("Resolved node kind.", "node", n.Name, "kind", kind)
		resolved++
	}

	if resolved > 0 {
		logger.Debug("Kind resolution complete.", "resolved", resolved)
	}
	return nil
}
