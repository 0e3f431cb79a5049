// Package session holds per-user engagement counters for the current live stream.
//
// The store is a plain map keyed by the platform username. All methods are
// called from the engine actor goroutine, so no locking is needed. Counters
// only ever grow; a full Reset happens when a new live connection replaces
// the current one.
package session
