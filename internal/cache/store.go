package cache

// Key addresses one cache entry. Kind names the entity family ("orders",
// "order.stats"), Scope partitions by tenant, and ID is empty for
// collection-level entries.
type Key struct {
	Kind  string
	Scope string
	ID    string
}

// ListKey addresses the cached collection of a kind within a scope.
func ListKey(kind, scope string) Key {
	return Key{Kind: kind, Scope: scope}
}

// EntityKey addresses the single-entity slot for one id.
func EntityKey(kind, scope, id string) Key {
	return Key{Kind: kind, Scope: scope, ID: id}
}

// Store is the query-cache surface the bridge depends on. Implementations
// must be safe for concurrent use; the bridge writes from the dispatch
// goroutine while UI readers fetch from their own.
type Store interface {
	// Get returns the cached value and whether the key is present.
	Get(key Key) (any, bool)

	// Set writes the value for key, replacing any existing entry.
	Set(key Key, value any)

	// Invalidate removes the entry for key so the next read refetches.
	// Absent keys are a no-op.
	Invalidate(key Key)
}
