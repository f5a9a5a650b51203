package schedule

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vk/mlrcs/internal/graph"
	"github.com/vk/mlrcs/internal/node"
	"github.com/vk/mlrcs/internal/nodeid"
	"gopkg.in/yaml.v3"
)

// Format selects how a schedule is written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
}

// NotProvenNote is printed in text reports of exact schedules whose
// optimality could not be proven within the time limit.
const NotProvenNote = "NOTE: time limit reached, schedule not proven optimal"

// Report is the document form of a schedule, with node names in place of
// IDs.
type Report struct {
	Strategy Strategy `json:"strategy" yaml:"strategy"`
	Latency  int      `json:"latency" yaml:"latency"`
	Proven   bool     `json:"proven" yaml:"proven"`
	// SolverLatency is omitted for schedules that did not come from a
	// solver.
	SolverLatency int          `json:"solver_latency,omitempty" yaml:"solver_latency,omitempty"`
	Steps         []StepReport `json:"steps" yaml:"steps"`
}

// StepReport lists the operations of one time step by class.
type StepReport struct {
	Step int      `json:"step" yaml:"step"`
	And  []string `json:"and" yaml:"and"`
	Or   []string `json:"or" yaml:"or"`
	Not  []string `json:"not" yaml:"not"`
}

// NewReport converts a schedule into its document form.
func NewReport(g *graph.Graph, s *Schedule) Report {
	r := Report{
		Strategy:      s.Strategy,
		Latency:       s.Latency,
		Proven:        s.Proven,
		SolverLatency: s.SolverLatency,
		Steps:         make([]StepReport, 0, len(s.Steps)),
	}
	for _, step := range s.Steps {
		r.Steps = append(r.Steps, StepReport{
			Step: step.Index,
			And:  names(g, step.Ops[node.ClassAnd]),
			Or:   names(g, step.Ops[node.ClassOr]),
			Not:  names(g, step.Ops[node.ClassNot]),
		})
	}
	return r
}

// Write renders a schedule in the requested format.
func Write(w io.Writer, f Format, g *graph.Graph, s *Schedule) error {
	switch f {
	case FormatText:
		return WriteText(w, g, s)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewReport(g, s))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewReport(g, s)); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q", f)
}

// WriteText renders the plain text report:
//
//	Heuristic Scheduling Result
//	1: {a b} {c} {}
//	2: {} {} {d}
//	LATENCY: 2
//	END
func WriteText(w io.Writer, g *graph.Graph, s *Schedule) error {
	var b strings.Builder
	b.WriteString(s.Strategy.Title())
	b.WriteByte('\n')
	for _, step := range s.Steps {
		fmt.Fprintf(&b, "%d: ", step.Index)
		for i, c := range node.Classes {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte('{')
			b.WriteString(strings.Join(names(g, step.Ops[c]), " "))
			b.WriteByte('}')
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "LATENCY: %d\n", s.Latency)
	if s.Strategy == Exact && !s.Proven {
		b.WriteString(NotProvenNote)
		if s.SolverLatency > 0 {
			fmt.Fprintf(&b, " (last used step %d, solver latency %d)", s.Latency, s.SolverLatency)
		}
		b.WriteByte('\n')
	}
	b.WriteString("END\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func names(g *graph.Graph, ids []nodeid.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = g.Name(id)
	}
	return out
}
