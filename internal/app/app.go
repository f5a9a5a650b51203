package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/vk/mlrcs/internal/ctxlog"
	"github.com/vk/mlrcs/internal/milp"
	"github.com/vk/mlrcs/internal/pbsolver"
	"github.com/vk/mlrcs/internal/plan"
	"github.com/vk/mlrcs/internal/satsolver"
	"github.com/vk/mlrcs/internal/schedule"
	"github.com/vk/mlrcs/internal/scheduler"
)

// Names of the MILP backends.
const (
	// SolverSAT is gini behind the satsolver package. Its searches stop at
	// the time limit.
	SolverSAT = "sat"
	// SolverPB is gophersat behind the pbsolver package. A search that
	// reaches the time limit keeps running in the background.
	SolverPB = "pb"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	loaders []plan.Loader
	solver  milp.Solver

	httpServer *http.Server
}

// Option customizes an App.
type Option func(*App)

// WithSolver replaces the MILP backend used by exact runs.
func WithSolver(s milp.Solver) Option {
	return func(a *App) { a.solver = s }
}

// WithLoaders replaces the plan loaders used by batch runs.
func WithLoaders(loaders ...plan.Loader) Option {
	return func(a *App) { a.loaders = loaders }
}

// NewApp is the constructor for the main application. Schedules and exports
// go to outW; logs go to logW.
func NewApp(outW, logW io.Writer, cfg *Config, opts ...Option) *App {
	a := &App{
		outW:    outW,
		logger:  newLogger(cfg.LogLevel, cfg.LogFormat, logW),
		config:  cfg,
		loaders: coreLoaders(),
		solver:  newSolver(cfg.Solver),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger.Debug("Logger configured successfully.", "level", cfg.LogLevel, "format", cfg.LogFormat, "solver", cfg.Solver)
	return a
}

func newSolver(name string) milp.Solver {
	if name == SolverPB {
		return pbsolver.New()
	}
	return satsolver.New()
}

// detacher is implemented by backends whose timed-out searches outlive
// the Solve call.
type detacher interface {
	Detached() int
}

// warnDetached reports searches that are still burning CPU after their
// jobs have finished.
func (a *App) warnDetached(ctx context.Context) {
	d, ok := a.solver.(detacher)
	if !ok {
		return
	}
	if n := d.Detached(); n > 0 {
		ctxlog.FromContext(ctx).Warn("Timed-out searches are still running in the background.",
			"searches", n,
			"solver", a.config.Solver,
		)
	}
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// begin attaches the application logger and starts the health check
// server if it is enabled. The returned function stops it again.
func (a *App) begin(ctx context.Context) (context.Context, func()) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx, a.config.HealthcheckPort)
	}
	return ctx, func() {
		_ = a.closeHealthcheckServer(ctx)
	}
}

// newScheduler builds the scheduler for a strategy. Zero timeLimit and
// threads fall back to the application configuration.
func (a *App) newScheduler(strategy schedule.Strategy, timeLimit time.Duration, threads int) (scheduler.Scheduler, error) {
	switch strategy {
	case schedule.Heuristic:
		return scheduler.NewHeuristic(), nil
	case schedule.Exact:
		if timeLimit == 0 {
			timeLimit = a.config.TimeLimit
		}
		if threads == 0 {
			threads = a.config.Threads
		}
		return scheduler.NewExact(a.solver, timeLimit, threads), nil
	}
	return nil, fmt.Errorf("%w: unknown strategy %q", scheduler.ErrInvalidUsage, strategy)
}
