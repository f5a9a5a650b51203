package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/vk/mlrcs/internal/blif"
	"github.com/vk/mlrcs/internal/ctxlog"
	"github.com/vk/mlrcs/internal/dot"
	"github.com/vk/mlrcs/internal/graph"
	"github.com/vk/mlrcs/internal/node"
	"github.com/vk/mlrcs/internal/schedule"
	"github.com/vk/mlrcs/internal/scheduler"
)

// Request describes a single scheduling run.
type Request struct {
	Netlist  string
	Strategy schedule.Strategy
	Limits   schedule.Limits
}

// Run schedules one netlist and writes the result to the output writer.
func (a *App) Run(ctx context.Context, req Request) error {
	ctx, done := a.begin(ctx)
	defer done()
	logger := ctxlog.FromContext(ctx)
	logger.Debug("App.Run method started.", "netlist", req.Netlist, "strategy", req.Strategy, "limits", req.Limits)

	g, s, err := a.scheduleNetlist(ctx, req, 0, 0)
	if err != nil {
		return err
	}
	if err := schedule.Write(a.outW, a.config.OutputFormat, g, s); err != nil {
		return fmt.Errorf("writing schedule: %w", err)
	}
	if a.config.GraphExport != "" {
		if err := writeDOTFile(a.config.GraphExport, g, s); err != nil {
			return err
		}
		logger.Info("Graph exported.", "path", a.config.GraphExport)
	}

	logger.Debug("App.Run method finished.")
	return nil
}

// scheduleNetlist reads the netlist and runs the requested scheduler on it.
func (a *App) scheduleNetlist(ctx context.Context, req Request, timeLimit time.Duration, threads int) (*graph.Graph, *schedule.Schedule, error) {
	logger := ctxlog.FromContext(ctx)
	if err := req.Limits.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", scheduler.ErrInvalidUsage, err)
	}
	sched, err := a.newScheduler(req.Strategy, timeLimit, threads)
	if err != nil {
		return nil, nil, err
	}

	g, err := blif.ParseFile(ctx, req.Netlist)
	if err != nil {
		return nil, nil, err
	}
	counts := g.ClassCounts()
	logger.Debug("Netlist loaded.",
		"nodes", g.Len(),
		"and", counts[node.ClassAnd],
		"or", counts[node.ClassOr],
		"not", counts[node.ClassNot],
	)

	began := time.Now()
	s, err := sched.Schedule(ctx, g, req.Limits)
	if err != nil {
		return nil, nil, fmt.Errorf("%s scheduling failed: %w", req.Strategy, err)
	}
	logger.Info("Schedule computed.",
		"strategy", s.Strategy,
		"latency", s.Latency,
		"proven", s.Proven,
		"elapsed", time.Since(began),
	)
	return g, s, nil
}

// ExportGraph writes the netlist graph without scheduling it, as DOT or,
// when mermaid is set, as a Mermaid flowchart.
func (a *App) ExportGraph(ctx context.Context, netlist string, mermaid bool) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	g, err := blif.ParseFile(ctx, netlist)
	if err != nil {
		return err
	}
	if mermaid {
		return dot.WriteMermaid(a.outW, g, nil)
	}
	return dot.WriteDOT(a.outW, g, nil)
}

func writeDOTFile(path string, g *graph.Graph, s *schedule.Schedule) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating graph export: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing graph export: %w", cerr)
		}
	}()
	if err := dot.WriteDOT(f, g, s); err != nil {
		return fmt.Errorf("writing graph export: %w", err)
	}
	return nil
}
