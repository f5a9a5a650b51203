// Package inmemorytopology provides a thread-safe, in-memory implementation
// of the topologystore.Store interface. Netlists handled by this tool fit
// comfortably in memory, so no persistent backend exists.
package inmemorytopology
