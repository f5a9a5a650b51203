package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vk/mlrcs/internal/ctxlog"
	"github.com/vk/mlrcs/internal/executor"
	"github.com/vk/mlrcs/internal/plan"
	"github.com/vk/mlrcs/internal/schedule"
)

// ErrNoPlan is returned when the batch paths contain no usable plan files.
var ErrNoPlan = errors.New("no plan")

// RunPlans loads every plan file under paths and schedules each job. Jobs
// run concurrently on the configured number of workers; their outputs are
// written in plan order once all of them have finished. A failing job does
// not stop the others. The returned error joins every job failure.
func (a *App) RunPlans(ctx context.Context, paths []string) error {
	ctx, done := a.begin(ctx)
	defer done()
	logger := ctxlog.FromContext(ctx)

	p, err := a.loadPlans(ctx, paths)
	if err != nil {
		return err
	}

	outputs := make([]bytes.Buffer, len(p.Jobs))
	tasks := make([]executor.Task, len(p.Jobs))
	for i, job := range p.Jobs {
		tasks[i] = executor.Task{
			Name: job.Name,
			Run: func(ctx context.Context) error {
				return a.runJob(ctx, job, &outputs[i])
			},
		}
	}

	logger.Info("Starting batch run.", "jobs", len(tasks), "workers", a.config.WorkerCount)
	reports := executor.New(a.config.WorkerCount).Execute(ctx, tasks)

	var errs []error
	for i, r := range reports {
		fmt.Fprintf(a.outW, "== %s (%s) ==\n", r.Name, p.Jobs[i].Source)
		if r.Err != nil {
			fmt.Fprintf(a.outW, "ERROR: %v\n", r.Err)
			errs = append(errs, fmt.Errorf("job %q: %w", r.Name, r.Err))
			continue
		}
		if _, err := outputs[i].WriteTo(a.outW); err != nil {
			return fmt.Errorf("writing job output: %w", err)
		}
	}

	logger.Info("Batch run finished.", "jobs", len(reports), "failed", len(errs))
	a.warnDetached(ctx)
	return errors.Join(errs...)
}

func (a *App) runJob(ctx context.Context, job *plan.Job, out *bytes.Buffer) error {
	req := Request{
		Netlist:  job.Netlist,
		Strategy: strategyOf(job.Mode),
		Limits:   job.Limits,
	}
	g, s, err := a.scheduleNetlist(ctx, req, job.TimeLimit, job.Threads)
	if err != nil {
		return err
	}
	if err := schedule.Write(out, a.config.OutputFormat, g, s); err != nil {
		return fmt.Errorf("writing schedule: %w", err)
	}
	if a.config.GraphExport != "" {
		path := jobExportPath(a.config.GraphExport, job.Name)
		if err := writeDOTFile(path, g, s); err != nil {
			return err
		}
		ctxlog.FromContext(ctx).Debug("Graph exported.", "path", path)
	}
	return nil
}

func strategyOf(m plan.Mode) schedule.Strategy {
	if m == plan.ModeExact {
		return schedule.Exact
	}
	return schedule.Heuristic
}

// jobExportPath derives a per-job export file from the configured path:
// out/graph.dot becomes out/graph.<job>.dot.
func jobExportPath(base, job string) string {
	ext := filepath.Ext(base)
	safe := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' {
			return '_'
		}
		return r
	}, job)
	return strings.TrimSuffix(base, ext) + "." + safe + ext
}
