package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/vk/mlrcs/internal/ctxlog"
	"github.com/vk/mlrcs/internal/fsutil"
	"github.com/vk/mlrcs/internal/plan"
)

// loadPlans collects plan files under paths and hands each one to the
// loader registered for its extension.
func (a *App) loadPlans(ctx context.Context, paths []string) (*plan.Plan, error) {
	logger := ctxlog.FromContext(ctx)

	byExt := make(map[string]plan.Loader, len(a.loaders))
	exts := make([]string, 0, len(a.loaders))
	for _, l := range a.loaders {
		byExt[l.Extension()] = l
		exts = append(exts, l.Extension())
	}

	files, err := fsutil.Collect(paths, exts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoPlan, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no plan files found in %v", ErrNoPlan, paths)
	}
	logger.Debug("Plan files collected.", "count", len(files))

	// Files are sorted, so grouping keeps a stable order per loader.
	grouped := make(map[string][]string)
	for _, f := range files {
		ext := filepath.Ext(f)
		grouped[ext] = append(grouped[ext], f)
	}

	var plans []*plan.Plan
	for _, ext := range exts {
		if len(grouped[ext]) == 0 {
			continue
		}
		p, err := byExt[ext].Load(ctx, grouped[ext]...)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}

	merged, err := plan.Merge(plans...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Plan loaded.", "jobs", len(merged.Jobs))
	return merged, nil
}
