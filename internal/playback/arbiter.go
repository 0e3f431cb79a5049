package playback

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Arbiter tracks whether a sound cue currently occupies the shared audio
// channel. All methods run on the engine actor goroutine; only the expiry
// timer goroutine runs elsewhere, and it does nothing but invoke onExpire.
type Arbiter struct {
	clock    clockwork.Clock
	duration time.Duration
	onExpire func(generation uint64)

	active     bool
	generation uint64
	cancel     chan struct{}
}

// NewArbiter creates an arbiter whose cues expire after duration.
// onExpire is called from a timer goroutine when a cue's expiry fires; the
// caller is expected to route it back onto its own goroutine and call
// Expire with the same generation.
func NewArbiter(clock clockwork.Clock, duration time.Duration, onExpire func(generation uint64)) *Arbiter {
	return &Arbiter{
		clock:    clock,
		duration: duration,
		onExpire: onExpire,
	}
}

// RequestPlay claims the audio channel for a new cue.
// Returns false if a cue is already active: the request is dropped, not
// queued, and the active cue's expiry is left untouched.
func (a *Arbiter) RequestPlay() bool {
	if a.active {
		return false
	}

	a.active = true
	a.generation++
	a.cancel = make(chan struct{})

	timer := a.clock.NewTimer(a.duration)
	generation := a.generation
	cancel := a.cancel
	go func() {
		defer timer.Stop()
		select {
		case <-timer.Chan():
			a.onExpire(generation)
		case <-cancel:
		}
	}()

	return true
}

// Expire releases the channel for a fired expiry. The generation guard
// makes a stale expiry (one whose cue was already stopped or replaced) a
// no-op, so a short old cue can never release a later one.
// Returns true if the cue was released.
func (a *Arbiter) Expire(generation uint64) bool {
	if !a.active || generation != a.generation {
		return false
	}
	a.active = false
	return true
}

// Stop releases the channel immediately, cancelling the pending expiry.
// No-op if no cue is active. Returns true if a cue was stopped.
func (a *Arbiter) Stop() bool {
	if !a.active {
		return false
	}
	close(a.cancel)
	a.active = false
	return true
}

// Active reports whether a cue currently occupies the channel.
func (a *Arbiter) Active() bool {
	return a.active
}
