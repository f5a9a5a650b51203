// Package hclplan loads batch plans written in HCL.
//
//	defaults {
//	  mode       = "exact"
//	  time_limit = "30s"
//	  threads    = cpus
//	}
//
//	job "adder" {
//	  netlist = "adder.blif"
//	  limits {
//	    and = 2
//	    or  = 1
//	    not = 1
//	  }
//	}
//
// Expressions may reference two variables: cpus, the number of logical
// CPUs, and env, a map of the process environment.
package hclplan

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/mlrcs/internal/ctxlog"
	"github.com/vk/mlrcs/internal/plan"
	"github.com/vk/mlrcs/internal/schedule"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Loader is the HCL implementation of plan.Loader.
type Loader struct{}

// NewLoader creates a new HCL plan loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ plan.Loader = (*Loader)(nil)

type fileRoot struct {
	Defaults *defaultsBlock `hcl:"defaults,block"`
	Jobs     []*jobBlock    `hcl:"job,block"`
}

type defaultsBlock struct {
	Mode      *string      `hcl:"mode,optional"`
	TimeLimit *string      `hcl:"time_limit,optional"`
	Threads   *int         `hcl:"threads,optional"`
	Limits    *limitsBlock `hcl:"limits,block"`
}

type jobBlock struct {
	Name      string       `hcl:"name,label"`
	Netlist   string       `hcl:"netlist"`
	Mode      *string      `hcl:"mode,optional"`
	TimeLimit *string      `hcl:"time_limit,optional"`
	Threads   *int         `hcl:"threads,optional"`
	Limits    *limitsBlock `hcl:"limits,block"`
}

type limitsBlock struct {
	And int `hcl:"and"`
	Or  int `hcl:"or"`
	Not int `hcl:"not"`
}

// Extension implements plan.Loader.
func (l *Loader) Extension() string { return ".hcl" }

// Load implements plan.Loader.
func (l *Loader) Load(ctx context.Context, files ...string) (*plan.Plan, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL plan loader started.", "file_count", len(files))

	evalCtx, err := newEvalContext()
	if err != nil {
		return nil, err
	}

	parser := hclparse.NewParser()
	var plans []*plan.Plan
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		p, err := toDraft(file, &root).Resolve()
		if err != nil {
			return nil, err
		}
		logger.Debug("Loaded HCL plan file.", "file", file, "jobs", len(p.Jobs))
		plans = append(plans, p)
	}
	return plan.Merge(plans...)
}

func toDraft(file string, root *fileRoot) *plan.Draft {
	d := &plan.Draft{Source: file}
	if root.Defaults != nil {
		d.Defaults = plan.DraftJob{
			Mode:      deref(root.Defaults.Mode),
			TimeLimit: deref(root.Defaults.TimeLimit),
			Threads:   root.Defaults.Threads,
			Limits:    root.Defaults.Limits.toLimits(),
		}
	}
	for _, j := range root.Jobs {
		d.Jobs = append(d.Jobs, plan.DraftJob{
			Name:      j.Name,
			Netlist:   j.Netlist,
			Mode:      deref(j.Mode),
			TimeLimit: deref(j.TimeLimit),
			Threads:   j.Threads,
			Limits:    j.Limits.toLimits(),
		})
	}
	return d
}

func (b *limitsBlock) toLimits() *schedule.Limits {
	if b == nil {
		return nil
	}
	return &schedule.Limits{And: b.And, Or: b.Or, Not: b.Not}
}

// newEvalContext exposes cpus and env to plan expressions.
func newEvalContext() (*hcl.EvalContext, error) {
	cpus, err := gocty.ToCtyValue(runtime.NumCPU(), cty.Number)
	if err != nil {
		return nil, fmt.Errorf("building evaluation context: %w", err)
	}

	envVars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			envVars[k] = cty.StringVal(v)
		}
	}
	env := cty.MapValEmpty(cty.String)
	if len(envVars) > 0 {
		env = cty.MapVal(envVars)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"cpus": cpus,
			"env":  env,
		},
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
