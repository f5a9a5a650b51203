// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates CLI flags into the application's internal configuration.
//
// Usage errors (unknown commands or flags, a wrong argument count, limits
// that are not non-negative integers) are reported with exit code 2 before
// any netlist is read. Every other failure exits with code 1.
package cli
