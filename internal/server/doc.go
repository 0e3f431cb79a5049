// Package server implements the HTTP server using Echo framework.
//
// Routes: static overlay assets, the overlay WebSocket endpoint, and
// observability (health, metrics, version). The WebSocket read pump parses
// client control messages and forwards connect requests to the engine.
package server
