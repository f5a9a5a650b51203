package schedule

import (
	"fmt"
	"slices"

	"github.com/vk/mlrcs/internal/graph"
	"github.com/vk/mlrcs/internal/node"
	"github.com/vk/mlrcs/internal/nodeid"
)

// Strategy names the scheduler that produced a Schedule.
type Strategy string

const (
	Heuristic Strategy = "heuristic"
	Exact     Strategy = "exact"
)

// Title is the header line of the text report.
func (s Strategy) Title() string {
	switch s {
	case Heuristic:
		return "Heuristic Scheduling Result"
	case Exact:
		return "ILP-based Scheduling Result"
	}
	return string(s) + " Scheduling Result"
}

// Step is one time step of a schedule: the operations started at that step,
// grouped by resource class in ascending ID order.
type Step struct {
	Index int
	Ops   [node.NumClasses][]nodeid.ID
}

// Schedule is a complete assignment of operations to time steps.
type Schedule struct {
	Strategy Strategy
	// Latency is the number of time steps. It is at least 1, even for a
	// graph without operations.
	Latency int
	// Proven reports whether the schedule is known to have minimum latency.
	// Heuristic schedules are never proven.
	Proven bool
	// Steps has exactly Latency entries; Steps[i].Index is i+1.
	Steps []Step
	// SolverLatency is the value the exact solver gave its latency
	// variable, or 0. An unproven solution may leave it above Latency.
	SolverLatency int

	times []int
}

// FromTimes builds a Schedule from per-node start times indexed by
// nodeid.ID. Every operation must have a time of at least 1; entries for
// non-operations are ignored.
func FromTimes(g *graph.Graph, strategy Strategy, times []int) (*Schedule, error) {
	if len(times) != g.Len() {
		return nil, fmt.Errorf("got %d start times for %d nodes", len(times), g.Len())
	}

	latency := 1
	for _, op := range g.Operations() {
		t := times[op]
		if t < 1 {
			return nil, fmt.Errorf("operation %q has no start time", g.Name(op))
		}
		latency = max(latency, t)
	}

	s := &Schedule{
		Strategy: strategy,
		Latency:  latency,
		Steps:    make([]Step, latency),
		times:    make([]int, g.Len()),
	}
	for i := range s.Steps {
		s.Steps[i].Index = i + 1
	}
	for _, op := range g.Operations() {
		t := times[op]
		c, _ := g.Kind(op).Class()
		s.times[op] = t
		s.Steps[t-1].Ops[c] = append(s.Steps[t-1].Ops[c], op)
	}
	for i := range s.Steps {
		for c := range s.Steps[i].Ops {
			slices.Sort(s.Steps[i].Ops[c])
		}
	}
	return s, nil
}

// Time returns the start step of a node, or 0 if the node is not an
// operation of the scheduled graph.
func (s *Schedule) Time(id nodeid.ID) int {
	if !id.Valid() || int(id) >= len(s.times) {
		return 0
	}
	return s.times[id]
}

// Times returns a copy of the per-node start times indexed by nodeid.ID.
func (s *Schedule) Times() []int {
	return slices.Clone(s.times)
}

// Equal reports whether two schedules assign the same step to every node.
// Strategy, Proven and SolverLatency are not compared.
func (s *Schedule) Equal(other *Schedule) bool {
	return s.Latency == other.Latency && slices.Equal(s.times, other.times)
}
