package bridge

import (
	"log/slog"
	"sync"

	"github.com/trySamm/realtime/internal/cache"
	"github.com/trySamm/realtime/internal/realtime"
)

// Bridge applies realtime events to the query cache. It holds a single
// subscription at a time, scoped to one tenant; Bind replaces any previous
// registration so a tenant switch cannot leave a stale handler writing into
// the wrong scope.
type Bridge struct {
	store  cache.Store
	rules  map[string]Rule
	logger *slog.Logger

	mu    sync.Mutex
	scope string
	unsub func()
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithRules replaces the default event-to-cache rule set.
func WithRules(rules map[string]Rule) Option {
	return func(b *Bridge) {
		if rules != nil {
			b.rules = rules
		}
	}
}

// WithLogger sets the bridge logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates a bridge over the given store. It does nothing until Bind.
func New(store cache.Store, opts ...Option) *Bridge {
	b := &Bridge{
		store:  store,
		rules:  DefaultRules(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Bind subscribes the bridge to the dispatcher for the given tenant scope.
// A previous binding, if any, is removed first.
func (b *Bridge) Bind(d *realtime.Dispatcher, scope string) {
	b.mu.Lock()
	if b.unsub != nil {
		b.unsub()
	}
	b.scope = scope
	b.unsub = d.Subscribe(EventTypes(b.rules), b.handle)
	b.mu.Unlock()

	b.logger.Debug("cache bridge bound", "scope", scope)
}

// Unbind removes the current subscription. Safe to call when not bound.
func (b *Bridge) Unbind() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.unsub != nil {
		b.unsub()
		b.unsub = nil
		b.scope = ""
	}
}

func (b *Bridge) handle(evt realtime.Event) {
	rule, ok := b.rules[evt.Type]
	if !ok {
		return
	}

	id, _ := evt.Payload["id"].(string)
	if id == "" {
		b.logger.Warn("event dropped by cache bridge, no entity id", "type", evt.Type)
		return
	}

	b.mu.Lock()
	scope := b.scope
	b.mu.Unlock()

	b.upsertList(rule, scope, id, evt.Payload)

	// The entity slot is written unconditionally so detail views stay fresh
	// even when the list was never loaded.
	b.store.Set(cache.EntityKey(rule.Kind, scope, id), evt.Payload)

	for _, agg := range rule.Aggregates {
		b.store.Invalidate(cache.ListKey(agg, scope))
	}
}

// upsertList replaces the matching entry in the cached list, preserving
// order. Insert-class events prepend when no entry matches; all others leave
// the list untouched, so entities the cache never loaded are not invented.
func (b *Bridge) upsertList(rule Rule, scope, id string, entity map[string]any) {
	key := cache.ListKey(rule.Kind, scope)

	cur, ok := b.store.Get(key)
	if !ok {
		return
	}
	list, ok := cur.([]map[string]any)
	if !ok {
		b.logger.Warn("cached list has unexpected shape, skipping upsert",
			"kind", rule.Kind, "scope", scope)
		return
	}

	for i, item := range list {
		if itemID, _ := item["id"].(string); itemID == id {
			next := make([]map[string]any, len(list))
			copy(next, list)
			next[i] = entity
			b.store.Set(key, next)
			return
		}
	}

	if rule.Insert {
		next := make([]map[string]any, 0, len(list)+1)
		next = append(next, entity)
		next = append(next, list...)
		b.store.Set(key, next)
	}
}
