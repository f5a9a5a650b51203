package plan

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/vk/mlrcs/internal/schedule"
)

// Loader is the interface for a format-specific plan loader.
type Loader interface {
	// Extension returns the file extension handled by the loader,
	// including the leading dot.
	Extension() string

	// Load reads the given plan files and returns the merged plan.
	Load(ctx context.Context, files ...string) (*Plan, error)
}

// Mode selects the scheduling strategy of a job.
type Mode string

const (
	ModeHeuristic Mode = "heuristic"
	ModeExact     Mode = "exact"
)

// ParseMode validates a mode name. The empty string is not a mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case ModeHeuristic, ModeExact:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q (want heuristic or exact)", s)
}

// Plan is the resolved, validated list of jobs.
type Plan struct {
	Jobs []*Job
}

// Job is one scheduling run.
type Job struct {
	Name string
	// Netlist is the BLIF file, already resolved against the plan file's
	// directory.
	Netlist string
	Mode    Mode
	Limits  schedule.Limits
	// TimeLimit and Threads only apply to exact jobs. Zero means the
	// solver default.
	TimeLimit time.Duration
	Threads   int
	// Source is the plan file that declared the job.
	Source string
}

// Merge concatenates plans, rejecting duplicate job names.
func Merge(plans ...*Plan) (*Plan, error) {
	out := &Plan{}
	where := make(map[string]string)
	for _, p := range plans {
		for _, j := range p.Jobs {
			if prev, dup := where[j.Name]; dup {
				return nil, fmt.Errorf("job %q is declared in both %s and %s", j.Name, prev, j.Source)
			}
			where[j.Name] = j.Source
			out.Jobs = append(out.Jobs, j)
		}
	}
	return out, nil
}

// Draft is the decoded content of one plan file before defaults are
// applied.
type Draft struct {
	Source   string
	Defaults DraftJob
	Jobs     []DraftJob
}

// DraftJob holds the settings of a job, or the defaults of a file, as
// written. Nil and empty fields were not set.
type DraftJob struct {
	Name      string
	Netlist   string
	Mode      string
	TimeLimit string
	Threads   *int
	Limits    *schedule.Limits
}

// Resolve applies defaults to every job and validates the result. All
// problems in the file are reported together.
func (d *Draft) Resolve() (*Plan, error) {
	p := &Plan{}
	var errs []error
	seen := make(map[string]bool)

	for _, dj := range d.Jobs {
		j, err := d.resolveJob(dj)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: job %q: %w", d.Source, dj.Name, err))
			continue
		}
		if seen[j.Name] {
			errs = append(errs, fmt.Errorf("%s: job %q declared twice", d.Source, j.Name))
			continue
		}
		seen[j.Name] = true
		p.Jobs = append(p.Jobs, j)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return p, nil
}

func (d *Draft) resolveJob(dj DraftJob) (*Job, error) {
	j := &Job{Name: dj.Name, Source: d.Source}
	if dj.Name == "" {
		return nil, errors.New("name is required")
	}
	if dj.Netlist == "" {
		return nil, errors.New("netlist is required")
	}
	j.Netlist = dj.Netlist
	if !filepath.IsAbs(j.Netlist) {
		j.Netlist = filepath.Join(filepath.Dir(d.Source), j.Netlist)
	}

	mode := firstNonEmpty(dj.Mode, d.Defaults.Mode, string(ModeHeuristic))
	m, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}
	j.Mode = m

	if tl := firstNonEmpty(dj.TimeLimit, d.Defaults.TimeLimit); tl != "" {
		j.TimeLimit, err = time.ParseDuration(tl)
		if err != nil {
			return nil, fmt.Errorf("time_limit: %w", err)
		}
		if j.TimeLimit < 0 {
			return nil, fmt.Errorf("time_limit must not be negative, got %s", tl)
		}
	}

	switch {
	case dj.Threads != nil:
		j.Threads = *dj.Threads
	case d.Defaults.Threads != nil:
		j.Threads = *d.Defaults.Threads
	}
	if j.Threads < 0 {
		return nil, fmt.Errorf("threads must not be negative, got %d", j.Threads)
	}

	switch {
	case dj.Limits != nil:
		j.Limits = *dj.Limits
	case d.Defaults.Limits != nil:
		j.Limits = *d.Defaults.Limits
	default:
		return nil, errors.New("limits are required")
	}
	if err := j.Limits.Validate(); err != nil {
		return nil, err
	}
	return j, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
