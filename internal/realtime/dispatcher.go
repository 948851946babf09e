package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// subscription pairs an event-type filter with a handler. Owned exclusively
// by the dispatcher; callers hold only the unsubscribe closure.
type subscription struct {
	id      string
	types   map[string]struct{}
	handler Handler
}

func (s *subscription) matches(eventType string) bool {
	if _, ok := s.types[Wildcard]; ok {
		return true
	}
	_, ok := s.types[eventType]
	return ok
}

// Dispatcher parses inbound frames and fans domain events out to
// subscribers. System control frames (heartbeat replies) are consumed
// internally and never reach subscribers.
type Dispatcher struct {
	logger  *slog.Logger
	metrics Metrics

	mu   sync.RWMutex
	subs []*subscription
	pong func()
}

// NewDispatcher creates an event dispatcher. Both arguments may be nil.
func NewDispatcher(logger *slog.Logger, metrics Metrics) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Dispatcher{
		logger:  logger,
		metrics: metrics,
	}
}

// SetPongHandler routes heartbeat replies to fn. Replies are consumed here
// and never delivered to subscribers.
func (d *Dispatcher) SetPongHandler(fn func()) {
	d.mu.Lock()
	d.pong = fn
	d.mu.Unlock()
}

// Subscribe registers a handler for the given event-type tags and returns a
// function that removes exactly this registration. The returned function is
// idempotent. Use Wildcard to receive every domain event.
//
// Subscribing or unsubscribing from within a handler is safe: dispatch
// iterates over a snapshot of the registry taken per frame.
func (d *Dispatcher) Subscribe(eventTypes []string, handler Handler) func() {
	sub := &subscription{
		id:      uuid.NewString(),
		types:   make(map[string]struct{}, len(eventTypes)),
		handler: handler,
	}
	for _, t := range eventTypes {
		sub.types[t] = struct{}{}
	}

	d.mu.Lock()
	d.subs = append(d.subs, sub)
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, s := range d.subs {
			if s.id == sub.id {
				d.subs = append(d.subs[:i:i], d.subs[i+1:]...)
				return
			}
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (d *Dispatcher) SubscriberCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subs)
}

// Dispatch parses one inbound frame and delivers it. Malformed frames are
// logged and dropped; a panicking handler is logged and does not prevent
// delivery to subsequent subscribers. Dispatch never panics or returns an
// error, because the stream must keep flowing across bad payloads.
func (d *Dispatcher) Dispatch(data []byte) {
	d.metrics.IncFrames()

	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		d.metrics.IncParseErrors()
		d.logger.Warn("dropping malformed frame", "error", err)
		return
	}
	if frame.Type == "" {
		d.metrics.IncParseErrors()
		d.logger.Warn("dropping frame without type")
		return
	}

	if frame.Type == TypePong {
		d.mu.RLock()
		pong := d.pong
		d.mu.RUnlock()
		if pong != nil {
			pong()
		}
		return
	}

	event := Event{
		Type:       frame.Type,
		Payload:    frame.Payload,
		ReceivedAt: time.Now(),
	}

	// Snapshot so handlers may subscribe/unsubscribe mid-dispatch without
	// corrupting this delivery pass.
	d.mu.RLock()
	matched := make([]*subscription, 0, len(d.subs))
	for _, sub := range d.subs {
		if sub.matches(event.Type) {
			matched = append(matched, sub)
		}
	}
	d.mu.RUnlock()

	for _, sub := range matched {
		d.deliver(sub, event)
	}
}

func (d *Dispatcher) deliver(sub *subscription, event Event) {
	defer func() {
		if r := recover(); r != nil {
			d.metrics.IncHandlerErrors()
			d.logger.Error("event handler panicked",
				"type", event.Type,
				"subscription", sub.id,
				"panic", r,
			)
		}
	}()

	sub.handler(event)
	d.metrics.IncEventsDelivered()
}
