// Package hub fans outbound messages out to all connected overlay clients.
//
// Single goroutine + command channel (no mutexes); per-connection write
// goroutines with a bounded send buffer so one slow client never stalls
// the rest. Every client receives an identical copy of every message.
package hub
