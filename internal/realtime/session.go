package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/trySamm/realtime/internal/auth"
)

// Conn is the subset of *websocket.Conn the session drives. Tests substitute
// a fake transport through WithDialer.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Dialer opens the underlying socket for one connection attempt.
type Dialer func(ctx context.Context, rawURL string, header http.Header) (Conn, error)

// Session owns exactly one live connection to the realtime stream at a time.
// It authenticates the handshake, feeds inbound frames to the dispatcher,
// probes liveness via heartbeats, and retries unexpected closes per the
// reconnection policy.
//
// Construct one session per application and inject it where needed; there is
// no package-level instance.
type Session struct {
	cfg        SessionConfig
	tokens     auth.TokenProvider
	dispatcher *Dispatcher
	policy     Policy
	dial       Dialer
	logger     *slog.Logger
	metrics    Metrics

	mu             sync.Mutex
	state          State
	conn           Conn
	connGen        uint64 // bumped on every connect/disconnect to orphan stale read loops
	intentional    bool   // true between Disconnect and the next Connect
	reconnectTimer *time.Timer
	hb             *heartbeatMonitor
	baseCtx        context.Context

	writeMu sync.Mutex

	listenerMu sync.RWMutex
	listeners  []stateListener
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(metrics Metrics) Option {
	return func(s *Session) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// WithDialer replaces the websocket dialer, letting tests drive the session
// with a fake transport.
func WithDialer(dial Dialer) Option {
	return func(s *Session) {
		if dial != nil {
			s.dial = dial
		}
	}
}

// New creates a session. The dispatcher receives every inbound frame; its
// pong handler is wired to the session's heartbeat monitor.
func New(cfg SessionConfig, tokens auth.TokenProvider, dispatcher *Dispatcher, opts ...Option) *Session {
	s := &Session{
		cfg:        cfg,
		tokens:     tokens,
		dispatcher: dispatcher,
		policy:     NewPolicy(cfg.Reconnect),
		logger:     slog.Default(),
		metrics:    nopMetrics{},
		state:      State{Status: StatusDisconnected},
	}
	s.dial = s.gorillaDial

	for _, opt := range opts {
		opt(s)
	}

	dispatcher.SetPongHandler(s.handlePong)
	return s
}

func (s *Session) gorillaDial(ctx context.Context, rawURL string, header http.Header) (Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: s.cfg.HandshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, rawURL, header)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// State returns the current immutable state snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OnStateChange registers a listener invoked synchronously on every state
// transition with the new snapshot. The returned function removes the
// listener and is idempotent.
func (s *Session) OnStateChange(fn StateListener) func() {
	l := stateListener{id: uuid.NewString(), fn: fn}

	s.listenerMu.Lock()
	s.listeners = append(s.listeners, l)
	s.listenerMu.Unlock()

	return func() {
		s.listenerMu.Lock()
		defer s.listenerMu.Unlock()
		for i, cur := range s.listeners {
			if cur.id == l.id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// notify delivers a state snapshot to listeners in registration order.
// Called outside the session mutex so listeners may call back in.
func (s *Session) notify(st State) {
	s.listenerMu.RLock()
	snapshot := make([]stateListener, len(s.listeners))
	copy(snapshot, s.listeners)
	s.listenerMu.RUnlock()

	for _, l := range snapshot {
		l.fn(st)
	}
}

// Connect opens the stream. Calling it while already connected or connecting
// is a logged no-op, which guards against duplicate sockets. A missing auth
// token moves the session to the error state without a socket attempt and
// without scheduling a retry; the caller must re-authenticate first.
func (s *Session) Connect(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	if s.state.Status == StatusConnected || s.state.Status == StatusConnecting {
		status := s.state.Status
		s.mu.Unlock()
		s.logger.Warn("connect ignored, session already active", "status", status)
		return nil
	}

	token, ok := s.tokens.Token()
	if !ok {
		st := s.state
		st.Status = StatusError
		st.LastError = ErrNoToken
		s.state = st
		s.mu.Unlock()

		s.logger.Error("connect refused, no auth token")
		s.notify(st)
		return ErrNoToken
	}

	s.intentional = false
	s.baseCtx = ctx
	st := s.state
	st.Status = StatusConnecting
	st.LastError = nil
	s.state = st
	s.mu.Unlock()
	s.notify(st)

	return s.open(ctx, token)
}

// open performs one dial attempt with the already-acquired token.
func (s *Session) open(ctx context.Context, token string) error {
	rawURL, err := authURL(s.cfg.URL, token)
	if err != nil {
		return s.openFailed(err)
	}

	conn, err := s.dial(ctx, rawURL, nil)
	if err != nil {
		return s.openFailed(err)
	}

	s.mu.Lock()
	if s.intentional {
		// Disconnect raced the dial; the new socket is unwanted.
		s.mu.Unlock()
		conn.Close()
		return nil
	}

	s.conn = conn
	s.connGen++
	gen := s.connGen

	st := State{
		Status:          StatusConnected,
		LastConnectedAt: time.Now(),
	}
	s.state = st

	hb := newHeartbeatMonitor(s.cfg.Heartbeat, s.sendPing, s.onStale, s.logger)
	s.hb = hb
	s.mu.Unlock()

	s.metrics.IncConnects()
	s.metrics.SetConnectionStatus(1)
	s.logger.Info("realtime connected", "url", s.cfg.URL)
	s.notify(st)

	hb.Start()
	go s.readLoop(conn, gen)
	return nil
}

// openFailed records a dial failure and consults the policy for a retry.
// The session passes through the error state, then settles on disconnected:
// either waiting for the scheduled retry or, with attempts exhausted,
// terminally until the caller intervenes.
func (s *Session) openFailed(err error) error {
	s.mu.Lock()
	attempts := s.state.ReconnectAttempts
	errSt := s.state
	errSt.Status = StatusError
	errSt.LastError = err
	s.state = errSt

	st := errSt
	st.Status = StatusDisconnected
	s.state = st

	retry := !s.intentional && s.policy.ShouldRetry(0, attempts)
	if retry {
		s.scheduleRetryLocked(attempts)
	}
	s.mu.Unlock()

	s.logger.Error("realtime connect failed", "error", err, "attempts", attempts, "retry", retry)
	s.notify(errSt)
	s.notify(st)
	return err
}

// Disconnect tears the session down intentionally: every pending timer is
// cancelled, the socket is closed with the normal closure code, and the
// resulting close event is suppressed so no reconnect fires.
func (s *Session) Disconnect() {
	s.mu.Lock()
	s.intentional = true
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
		s.reconnectTimer = nil
	}
	if s.hb != nil {
		s.hb.Stop()
		s.hb = nil
	}
	conn := s.conn
	s.conn = nil
	s.connGen++ // orphan the read loop for this socket

	wasConnected := s.state.Status == StatusConnected
	st := s.state
	st.Status = StatusDisconnected
	st.ReconnectAttempts = 0
	s.state = st
	s.mu.Unlock()

	if conn != nil {
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(CloseNormal, ""),
			time.Now().Add(time.Second),
		)
		conn.Close()
	}
	if wasConnected {
		s.metrics.IncDisconnects()
	}
	s.metrics.SetConnectionStatus(0)
	s.logger.Info("realtime disconnected")
	s.notify(st)
}

// Reconnect is Disconnect immediately followed by Connect. The heartbeat
// monitor uses it when a connection goes stale.
func (s *Session) Reconnect() error {
	s.mu.Lock()
	ctx := s.baseCtx
	s.mu.Unlock()

	s.Disconnect()
	return s.Connect(ctx)
}

// Send serializes v as JSON and transmits it. It returns false, without
// error, when the session is not connected or the write fails; unsent
// messages are never queued, the caller owns retry semantics.
func (s *Session) Send(v any) bool {
	s.mu.Lock()
	conn := s.conn
	connected := s.state.Status == StatusConnected
	s.mu.Unlock()

	if !connected || conn == nil {
		return false
	}

	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("send dropped, marshal failed", "error", err)
		return false
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.cfg.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Warn("send failed", "error", err)
		return false
	}
	return true
}

// readLoop drains one socket, feeding frames to the dispatcher until the
// connection drops. gen ties the loop to the socket it was started for.
func (s *Session) readLoop(conn Conn, gen uint64) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.handleClose(gen, err)
			return
		}
		s.dispatcher.Dispatch(data)
	}
}

// handleClose reacts to an unexpected close. Closes belonging to a socket
// the session already replaced or tore down are ignored.
func (s *Session) handleClose(gen uint64, err error) {
	s.mu.Lock()
	if gen != s.connGen || s.intentional {
		s.mu.Unlock()
		return
	}

	if s.hb != nil {
		s.hb.Stop()
		s.hb = nil
	}
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}

	code := closeCode(err)
	attempts := s.state.ReconnectAttempts

	st := s.state
	st.Status = StatusDisconnected
	st.LastError = err
	s.state = st

	retry := s.policy.ShouldRetry(code, attempts)
	if retry {
		s.scheduleRetryLocked(attempts)
	}
	s.mu.Unlock()

	s.metrics.IncDisconnects()
	s.metrics.SetConnectionStatus(0)
	s.logger.Warn("realtime connection lost",
		"error", err,
		"close_code", code,
		"attempts", attempts,
		"retry", retry,
	)
	s.notify(st)
}

// scheduleRetryLocked arms the reconnect timer. Callers hold s.mu.
func (s *Session) scheduleRetryLocked(attempts int) {
	delay := s.policy.NextDelay(attempts)
	s.logger.Info("scheduling reconnect", "delay", delay, "attempt", attempts+1)
	s.reconnectTimer = time.AfterFunc(delay, s.retryNow)
}

// retryNow fires when a scheduled reconnect timer elapses. The attempt
// counter increments here, when connect is actually re-invoked, not when the
// retry decision was made.
func (s *Session) retryNow() {
	s.mu.Lock()
	if s.intentional {
		s.mu.Unlock()
		return
	}
	s.reconnectTimer = nil

	st := s.state
	st.ReconnectAttempts++
	s.state = st

	ctx := s.baseCtx
	s.mu.Unlock()

	s.metrics.IncReconnects()
	s.notify(st)
	s.Connect(ctx)
}

// sendPing transmits one heartbeat probe.
func (s *Session) sendPing() bool {
	return s.Send(Frame{Type: TypePing})
}

// handlePong forwards heartbeat replies to the live monitor.
func (s *Session) handlePong() {
	s.mu.Lock()
	hb := s.hb
	s.mu.Unlock()
	if hb != nil {
		hb.Pong()
	}
}

// onStale runs when the heartbeat monitor declares the connection dead.
func (s *Session) onStale() {
	s.metrics.IncReconnects()
	if err := s.Reconnect(); err != nil {
		s.logger.Error("reconnect after stale heartbeat failed", "error", err)
	}
}

// authURL appends the bearer token to the endpoint's query string.
func authURL(rawURL, token string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// closeCode extracts the websocket close code from a read error. Errors
// without one (dead TCP, handshake teardown) map to the abnormal-closure
// code, which the policy treats as retryable.
func closeCode(err error) int {
	if ce, ok := err.(*websocket.CloseError); ok {
		return ce.Code
	}
	return websocket.CloseAbnormalClosure
}
