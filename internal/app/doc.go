// Package app wires the netlist reader, the schedulers and the plan loaders
// into the operations the command line exposes.
//
// An App owns its logger and configuration. It never calls os.Exit; errors
// are returned to the caller, which maps them to exit codes.
package app
