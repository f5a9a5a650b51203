// Package executor runs independent scheduling tasks with bounded
// concurrency.
//
// Each task owns its graph and scheduler state, so tasks never share
// mutable data. A failing task is recorded in its report and does not stop
// the others; cancelling the context skips tasks that have not started.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/mlrcs/internal/ctxlog"
	"golang.org/x/sync/errgroup"
)

// Task is one unit of work.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Report is the outcome of one task. Reports are returned in task order.
type Report struct {
	Name    string
	Err     error
	Skipped bool
	Elapsed time.Duration
}

// Executor runs tasks on a bounded number of workers.
type Executor struct {
	workers int
}

// New returns an executor with the given number of workers. Values below
// one are treated as one.
func New(workers int) *Executor {
	return &Executor{workers: max(1, workers)}
}

// Workers returns the concurrency limit.
func (e *Executor) Workers() int { return e.workers }

// Execute runs every task and waits for all of them.
func (e *Executor) Execute(ctx context.Context, tasks []Task) []Report {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Executor started.", "tasks", len(tasks), "workers", e.workers)

	reports := make([]Report, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, task := range tasks {
		reports[i].Name = task.Name
		g.Go(func() error {
			taskCtx := ctxlog.With(gctx, "task", task.Name)
			if err := taskCtx.Err(); err != nil {
				reports[i].Err = err
				reports[i].Skipped = true
				ctxlog.FromContext(taskCtx).Debug("Task skipped.", "reason", err)
				return nil
			}

			began := time.Now()
			reports[i].Err = run(taskCtx, task)
			reports[i].Elapsed = time.Since(began)

			if reports[i].Err != nil {
				ctxlog.FromContext(taskCtx).Error("Task failed.", "error", reports[i].Err, "elapsed", reports[i].Elapsed)
			} else {
				ctxlog.FromContext(taskCtx).Debug("Task succeeded.", "elapsed", reports[i].Elapsed)
			}
			return nil
		})
	}
	// Failures live in reports; the closures always return nil so one
	// failing task never cancels gctx for the others.
	_ = g.Wait()

	logger.Debug("Executor finished.", "tasks", len(tasks))
	return reports
}

// run converts a panicking task into an error so one bad task cannot take
// the batch down.
func run(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %q panicked: %v", task.Name, r)
		}
	}()
	return task.Run(ctx)
}
