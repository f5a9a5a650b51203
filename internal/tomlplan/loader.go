// Package tomlplan loads batch plans written in TOML.
//
//	[defaults]
//	mode = "exact"
//	time_limit = "30s"
//
//	[defaults.limits]
//	and = 1
//	or = 1
//	not = 1
//
//	[[job]]
//	name = "adder"
//	netlist = "adder.blif"
//
//	[job.limits]
//	and = 2
//	or = 1
//	not = 1
//
// Unknown keys are rejected.
package tomlplan

import (
	"context"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vk/mlrcs/internal/ctxlog"
	"github.com/vk/mlrcs/internal/plan"
	"github.com/vk/mlrcs/internal/schedule"
)

// Loader is the TOML implementation of plan.Loader.
type Loader struct{}

// NewLoader creates a new TOML plan loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ plan.Loader = (*Loader)(nil)

type fileRoot struct {
	Defaults *jobTable  `toml:"defaults"`
	Jobs     []jobTable `toml:"job"`
}

type jobTable struct {
	Name      string       `toml:"name"`
	Netlist   string       `toml:"netlist"`
	Mode      string       `toml:"mode"`
	TimeLimit string       `toml:"time_limit"`
	Threads   *int         `toml:"threads"`
	Limits    *limitsTable `toml:"limits"`
}

type limitsTable struct {
	And int `toml:"and"`
	Or  int `toml:"or"`
	Not int `toml:"not"`
}

// Extension implements plan.Loader.
func (l *Loader) Extension() string { return ".toml" }

// Load implements plan.Loader.
func (l *Loader) Load(ctx context.Context, files ...string) (*plan.Plan, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("TOML plan loader started.", "file_count", len(files))

	var plans []*plan.Plan
	for _, file := range files {
		var root fileRoot
		md, err := toml.DecodeFile(file, &root)
		if err != nil {
			return nil, fmt.Errorf("failed to decode TOML file %s: %w", file, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("TOML file %s: unknown keys: %s", file, strings.Join(keys, ", "))
		}
		if root.Defaults != nil && (root.Defaults.Name != "" || root.Defaults.Netlist != "") {
			return nil, fmt.Errorf("TOML file %s: defaults cannot set name or netlist", file)
		}

		p, err := toDraft(file, &root).Resolve()
		if err != nil {
			return nil, err
		}
		logger.Debug("Loaded TOML plan file.", "file", file, "jobs", len(p.Jobs))
		plans = append(plans, p)
	}
	return plan.Merge(plans...)
}

func toDraft(file string, root *fileRoot) *plan.Draft {
	d := &plan.Draft{Source: file}
	if root.Defaults != nil {
		d.Defaults = root.Defaults.toDraft()
	}
	for _, j := range root.Jobs {
		d.Jobs = append(d.Jobs, j.toDraft())
	}
	return d
}

func (j jobTable) toDraft() plan.DraftJob {
	dj := plan.DraftJob{
		Name:      j.Name,
		Netlist:   j.Netlist,
		Mode:      j.Mode,
		TimeLimit: j.TimeLimit,
		Threads:   j.Threads,
	}
	if j.Limits != nil {
		dj.Limits = &schedule.Limits{And: j.Limits.And, Or: j.Limits.Or, Not: j.Limits.Not}
	}
	return dj
}
