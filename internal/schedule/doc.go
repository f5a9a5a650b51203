// Package schedule defines the result of a scheduling run and the tools to
// check and present it.
//
// A Schedule maps every operation of a graph.Graph to a 1-based time step.
// It is produced by the schedulers in package scheduler, checked against
// the graph and the resource limits by Verify, and rendered by Write in the
// plain text report format or as JSON or YAML documents.
package schedule
