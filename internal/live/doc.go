// Package live consumes TikTok live events from the connector bridge.
//
// The bridge is a sidecar speaking JSON over websocket: one connect request
// out, then a stream of {"event": kind, "data": {...}} frames in. Frames
// decode into a closed set of typed event variants; unknown kinds are
// skipped. Numeric fields tolerate the platform's occasional stringified
// numbers and decode to zero on garbage, so a malformed field can never
// fault the event stream.
package live
