// Package plan defines the format-agnostic model of a batch scheduling plan,
// along with the Loader interface implemented by each plan file format.
//
// A plan is a list of jobs. Each job names a netlist, a strategy and the
// resource limits to schedule it under. Plan files may declare defaults
// that every job inherits unless it overrides them.
//
// Concrete loaders live in separate packages (hclplan, tomlplan). They
// decode their syntax into a Draft, and Draft.Resolve applies defaults,
// resolves netlist paths relative to the plan file and validates the result
// the same way for every format.
package plan
