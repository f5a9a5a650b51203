package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vk/mlrcs/internal/schedule"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	LogFormat string
	LogLevel  string

	// OutputFormat selects how schedules are rendered.
	OutputFormat schedule.Format
	// TimeLimit and Threads configure the exact scheduler. Plan jobs that
	// set their own values override them.
	TimeLimit time.Duration
	Threads   int
	// Solver names the MILP backend of the exact scheduler: SolverSAT or
	// SolverPB.
	Solver string

	WorkerCount     int
	HealthcheckPort int

	// GraphExport, when set, receives a DOT rendering of every scheduled
	// graph. Batch runs write one file per job next to it.
	GraphExport string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	var errs []error

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat))
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel))
	}

	if cfg.OutputFormat == "" {
		cfg.OutputFormat = schedule.FormatText
	} else if f, err := schedule.ParseFormat(string(cfg.OutputFormat)); err != nil {
		errs = append(errs, err)
	} else {
		cfg.OutputFormat = f
	}

	if cfg.TimeLimit < 0 {
		errs = append(errs, fmt.Errorf("time-limit must not be negative, got %s", cfg.TimeLimit))
	}
	if cfg.Threads < 0 {
		errs = append(errs, fmt.Errorf("threads must not be negative, got %d", cfg.Threads))
	}
	cfg.Solver = strings.ToLower(cfg.Solver)
	switch cfg.Solver {
	case "":
		cfg.Solver = SolverSAT
	case SolverSAT, SolverPB:
	default:
		errs = append(errs, fmt.Errorf("invalid solver %q: must be '%s' or '%s'", cfg.Solver, SolverSAT, SolverPB))
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 1
	} else if cfg.WorkerCount < 0 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", cfg.WorkerCount))
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		errs = append(errs, fmt.Errorf("healthcheck-port out of range: %d", cfg.HealthcheckPort))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &cfg, nil
}
