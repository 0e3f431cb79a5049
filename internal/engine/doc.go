// Package engine turns live events into overlay effect decisions.
//
// The Engine is an actor: a single goroutine consumes a command channel, so
// the session store and playback arbiter need no locking and events are
// processed to completion in arrival order. Dialing the bridge is the only
// operation that leaves the actor goroutine; its result comes back as a
// command. A connection epoch stamped onto dial results, pumped events,
// staggered photo timers, and sound expiries makes everything belonging to
// a replaced connection a no-op.
package engine
