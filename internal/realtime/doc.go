// Package realtime implements the dashboard's realtime connection manager.
//
// The connection manager:
//   - Maintains one authenticated WebSocket session to the event stream
//   - Reconnects after unexpected closes with capped exponential backoff
//   - Probes liveness with application-level ping/pong heartbeats
//   - Parses inbound frames and fans out domain events to subscribers
//
// The cache bridge and every UI consumer register through the same
// Dispatcher.Subscribe path; nothing gets privileged access to the stream.
package realtime
