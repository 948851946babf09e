package realtime

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"
)

// ErrNoToken is returned by Connect when the token provider has no
// credential. The session enters the error state and schedules no retry.
var ErrNoToken = errors.New("no auth token available")

// Application close codes sent by the server. Together with the normal
// closure code they mark closes that must never trigger a reconnect.
const (
	CloseNormal             = websocket.CloseNormalClosure // 1000, intentional teardown
	CloseInvalidCredentials = 4001                         // token invalid or expired
	CloseForbidden          = 4003                         // authenticated but not allowed
)

// Frame types reserved for system control messages. Everything else on the
// wire is a domain event tag.
const (
	TypePing = "system.ping"
	TypePong = "system.pong"
)

// Wildcard subscribes a handler to every domain event.
const Wildcard = "*"

// Frame is one discrete message on the wire.
type Frame struct {
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
}

// Event is a domain event delivered to subscribers. Events are transient:
// dispatched once on arrival, never stored.
type Event struct {
	Type       string
	Payload    map[string]any
	ReceivedAt time.Time
}

// Handler consumes domain events. Panics are recovered and logged so one
// subscriber cannot break delivery to the rest.
type Handler func(Event)

// ReconnectConfig controls retry behavior after unexpected closes.
// Immutable for the lifetime of a session.
type ReconnectConfig struct {
	Enabled      bool
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// HeartbeatConfig controls liveness probing. Immutable for the lifetime of
// a session.
type HeartbeatConfig struct {
	Enabled  bool
	Interval time.Duration
	Timeout  time.Duration
}

// SessionConfig configures a transport session.
type SessionConfig struct {
	URL              string // realtime endpoint, ws:// or wss://
	Reconnect        ReconnectConfig
	Heartbeat        HeartbeatConfig
	WriteTimeout     time.Duration
	HandshakeTimeout time.Duration
}

// DefaultSessionConfig returns sensible defaults; URL must still be set.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Reconnect: ReconnectConfig{
			Enabled:      true,
			MaxAttempts:  5,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
		},
		Heartbeat: HeartbeatConfig{
			Enabled:  true,
			Interval: 30 * time.Second,
			Timeout:  10 * time.Second,
		},
		WriteTimeout:     5 * time.Second,
		HandshakeTimeout: 10 * time.Second,
	}
}

// Metrics is a pluggable collector for session and dispatch counters.
type Metrics interface {
	IncConnects()
	IncDisconnects()
	IncReconnects()
	SetConnectionStatus(status float64)
	IncFrames()
	IncParseErrors()
	IncEventsDelivered()
	IncHandlerErrors()
}

type nopMetrics struct{}

func (nopMetrics) IncConnects() {}
func (nopMetrics) IncDisconnects() {}
func (nopMetrics) IncReconnects() {}
func (nopMetrics) SetConnectionStatus(status float64) {}
func (nopMetrics) IncFrames() {}
func (nopMetrics) IncParseErrors() {}
func (nopMetrics) IncEventsDelivered() {}
func (nopMetrics) IncHandlerErrors() {}
