package realtime

import "time"

// Status is the connection state machine's current phase.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

// State is an immutable snapshot of the connection. It is replaced wholesale
// on every transition; listeners receive the new value, never a shared
// mutable struct.
//
// Invariant: Status == StatusConnected implies ReconnectAttempts == 0 and
// LastError == nil.
type State struct {
	Status            Status
	LastConnectedAt   time.Time // zero until the first successful connect
	LastError         error     // nil after a successful connect
	ReconnectAttempts int
}

// StateListener observes state transitions. Listeners are invoked
// synchronously with the transition, in registration order.
type StateListener func(State)

type stateListener struct {
	id string
	fn StateListener
}
