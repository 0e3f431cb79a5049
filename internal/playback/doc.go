// Package playback arbitrates the single shared audio channel.
//
// All connected overlay clients play the same audio, so at most one cue may
// be active process-wide at any instant. The Arbiter enforces that: a play
// request while a cue is active is dropped (never queued, never preempted),
// and a fixed expiry releases the channel. Expiries carry a generation
// counter so a stale timer can never release a later cue.
package playback
