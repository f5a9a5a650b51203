package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/vk/mlrcs/internal/app"
	"github.com/vk/mlrcs/internal/milp"
	"github.com/vk/mlrcs/internal/schedule"
	"github.com/vk/mlrcs/internal/scheduler"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// options holds the persistent flag values of one invocation.
type options struct {
	logLevel        string
	logFormat       string
	format          string
	timeLimit       time.Duration
	threads         int
	solver          string
	workers         int
	healthcheckPort int
	dotPath         string
	mermaid         bool

	appOpts []app.Option
}

func (o *options) newApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := app.NewConfig(app.Config{
		LogFormat:       o.logFormat,
		LogLevel:        o.logLevel,
		OutputFormat:    schedule.Format(o.format),
		TimeLimit:       o.timeLimit,
		Threads:         o.threads,
		Solver:          o.solver,
		WorkerCount:     o.workers,
		HealthcheckPort: o.healthcheckPort,
		GraphExport:     o.dotPath,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", scheduler.ErrInvalidUsage, err)
	}
	return app.NewApp(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, o.appOpts...), nil
}

// Execute runs the command line and returns nil or an *ExitError.
func Execute(ctx context.Context, args []string, outW, errW io.Writer, appOpts ...app.Option) error {
	opts := &options{appOpts: appOpts}
	started := false
	root := newRootCommand(opts, &started)
	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(outW)
	root.SetErr(errW)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return nil
	}

	// Anything cobra rejects before a command body runs is a usage error.
	if !started || scheduler.KindOf(err) == scheduler.KindInvalidUsage {
		return &ExitError{
			Code:    ExitUsage,
			Message: fmt.Sprintf("Error: %v\n\n%s", err, cmd.UsageString()),
		}
	}
	return &ExitError{
		Code:    ExitFailure,
		Message: fmt.Sprintf("Error [%s]: %v", scheduler.KindOf(err), err),
	}
}

func newRootCommand(opts *options, started *bool) *cobra.Command {
	root := &cobra.Command{
		Use:   "mlrcs",
		Short: "Minimum-latency resource-constrained scheduling of logic networks",
		Long: "mlrcs schedules the AND, OR and NOT gates of a BLIF netlist into time steps\n" +
			"under per-step resource limits, either with a fast list heuristic or with\n" +
			"an exact 0-1 model that proves minimum latency.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return fmt.Errorf("%w: a command is required", scheduler.ErrInvalidUsage)
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", scheduler.ErrInvalidUsage, err)
	})

	f := root.PersistentFlags()
	f.StringVar(&opts.logLevel, "log-level", "info", "Logging level: debug, info, warn or error.")
	f.StringVar(&opts.logFormat, "log-format", "text", "Log output format: text or json.")
	f.StringVar(&opts.format, "format", "text", "Schedule output format: text, json or yaml.")
	f.DurationVar(&opts.timeLimit, "time-limit", milp.DefaultTimeLimit, "Time limit of the exact solver.")
	f.IntVar(&opts.threads, "threads", 0, "Thread hint for the exact solver. 0 uses the number of CPUs.")
	f.StringVar(&opts.solver, "solver", app.SolverSAT, "Exact solver backend: sat (gini) or pb (gophersat).")
	f.IntVar(&opts.workers, "workers", 4, "Number of concurrent jobs in batch runs.")
	f.IntVar(&opts.healthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	f.StringVar(&opts.dotPath, "dot", "", "Write a DOT rendering of the scheduled graph to this file.")

	// Set once argument and flag validation has passed.
	root.PersistentPreRun = func(*cobra.Command, []string) { *started = true }

	root.AddCommand(
		newScheduleCommand(opts, schedule.Heuristic, "heuristic", "h", "Schedule with the list heuristic"),
		newScheduleCommand(opts, schedule.Exact, "exact", "e", "Schedule with the exact solver"),
		newRunCommand(opts),
		newGraphCommand(opts),
	)
	return root
}

func newScheduleCommand(opts *options, strategy schedule.Strategy, use, alias, short string) *cobra.Command {
	return &cobra.Command{
		Use:     use + " BLIF AND OR NOT",
		Aliases: []string{alias},
		Short:   short,
		Args:    cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			limits, err := ParseLimits(args[1:])
			if err != nil {
				return err
			}
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context(), app.Request{
				Netlist:  args[0],
				Strategy: strategy,
				Limits:   limits,
			})
		},
	}
}

func newRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run PLAN...",
		Short: "Run the jobs of one or more .hcl or .toml plan files or directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			return a.RunPlans(cmd.Context(), args)
		},
	}
}

func newGraphCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph BLIF",
		Short: "Export the netlist graph as DOT or Mermaid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			return a.ExportGraph(cmd.Context(), args[0], opts.mermaid)
		},
	}
	cmd.Flags().BoolVar(&opts.mermaid, "mermaid", false, "Emit a Mermaid flowchart instead of DOT.")
	return cmd
}

// ParseLimits parses the AND, OR and NOT limits. Each must be a
// non-negative integer.
func ParseLimits(args []string) (schedule.Limits, error) {
	if len(args) != 3 {
		return schedule.Limits{}, fmt.Errorf("%w: expected 3 limits (AND OR NOT), got %d", scheduler.ErrInvalidUsage, len(args))
	}
	var values [3]int
	for i, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return schedule.Limits{}, fmt.Errorf("%w: limit %q is not an integer", scheduler.ErrInvalidUsage, arg)
		}
		values[i] = v
	}
	limits := schedule.Limits{And: values[0], Or: values[1], Not: values[2]}
	if err := limits.Validate(); err != nil {
		return schedule.Limits{}, fmt.Errorf("%w: %w", scheduler.ErrInvalidUsage, err)
	}
	return limits, nil
}
