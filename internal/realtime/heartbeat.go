package realtime

import (
	"log/slog"
	"sync"
	"time"
)

// heartbeatMonitor detects silently-dead connections that never produce a
// close event. While running it sends an application-level ping frame every
// interval and arms a pong-wait timer; a pong arriving in time disarms the
// wait, and a wait that fires declares the connection stale.
//
// One monitor serves one live connection. The session creates a fresh
// monitor on every successful connect and stops it whenever the session
// leaves the connected state.
type heartbeatMonitor struct {
	cfg     HeartbeatConfig
	send    func() bool // transmits one ping frame
	onStale func()      // invoked at most once, after Stop semantics apply
	logger  *slog.Logger

	mu        sync.Mutex
	stopped   bool
	pingTimer *time.Timer
	pongWait  *time.Timer
}

func newHeartbeatMonitor(cfg HeartbeatConfig, send func() bool, onStale func(), logger *slog.Logger) *heartbeatMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &heartbeatMonitor{
		cfg:     cfg,
		send:    send,
		onStale: onStale,
		logger:  logger,
	}
}

// Start schedules the first ping. No-op when heartbeats are disabled.
func (m *heartbeatMonitor) Start() {
	if !m.cfg.Enabled {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.pingTimer = time.AfterFunc(m.cfg.Interval, m.ping)
}

// Stop cancels all timers. After Stop, neither a ping nor a stale callback
// can fire.
func (m *heartbeatMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	m.cancelTimersLocked()
}

// Pong records a heartbeat reply, disarming the pending wait timer.
func (m *heartbeatMonitor) Pong() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pongWait != nil {
		m.pongWait.Stop()
		m.pongWait = nil
	}
}

func (m *heartbeatMonitor) ping() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	if !m.send() {
		m.logger.Debug("heartbeat ping not sent")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	if m.pongWait == nil {
		m.pongWait = time.AfterFunc(m.cfg.Timeout, m.stale)
	}
	m.pingTimer = time.AfterFunc(m.cfg.Interval, m.ping)
}

func (m *heartbeatMonitor) stale() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	m.cancelTimersLocked()
	m.mu.Unlock()

	m.logger.Warn("no heartbeat reply, connection stale", "timeout", m.cfg.Timeout)
	m.onStale()
}

func (m *heartbeatMonitor) cancelTimersLocked() {
	if m.pingTimer != nil {
		m.pingTimer.Stop()
		m.pingTimer = nil
	}
	if m.pongWait != nil {
		m.pongWait.Stop()
		m.pongWait = nil
	}
}
