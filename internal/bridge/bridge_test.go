package bridge

import (
	"fmt"
	"testing"

	"github.com/trySamm/realtime/internal/cache"
	"github.com/trySamm/realtime/internal/realtime"
)

const scope = "tenant-1"

func dispatchEvent(d *realtime.Dispatcher, eventType, id string, extra map[string]any) {
	payload := fmt.Sprintf(`{"id":%q`, id)
	for k, v := range extra {
		payload += fmt.Sprintf(`,%q:%q`, k, v)
	}
	payload += "}"
	d.Dispatch([]byte(fmt.Sprintf(`{"type":%q,"payload":%s}`, eventType, payload)))
}

func seedList(store cache.Store, kind string, ids ...string) {
	list := make([]map[string]any, len(ids))
	for i, id := range ids {
		list[i] = map[string]any{"id": id}
	}
	store.Set(cache.ListKey(kind, scope), list)
}

func cachedList(t *testing.T, store cache.Store, kind string) []map[string]any {
	t.Helper()
	v, ok := store.Get(cache.ListKey(kind, scope))
	if !ok {
		t.Fatalf("no cached list for %q", kind)
	}
	return v.([]map[string]any)
}

func TestBridge_UpdateReplacesInPlace(t *testing.T) {
	store := cache.NewMemory()
	d := realtime.NewDispatcher(nil, nil)
	New(store).Bind(d, scope)

	seedList(store, "orders", "a", "b")

	dispatchEvent(d, "order.updated", "a", map[string]any{"status": "confirmed"})

	list := cachedList(t, store, "orders")
	if len(list) != 2 {
		t.Fatalf("list length = %d, want 2", len(list))
	}
	if list[0]["id"] != "a" || list[0]["status"] != "confirmed" {
		t.Errorf("list[0] = %v, want updated entity a", list[0])
	}
	if list[1]["id"] != "b" || len(list[1]) != 1 {
		t.Errorf("list[1] = %v, want untouched entity b", list[1])
	}

	entity, ok := store.Get(cache.EntityKey("orders", scope, "a"))
	if !ok {
		t.Fatal("entity slot for a not written")
	}
	if entity.(map[string]any)["status"] != "confirmed" {
		t.Errorf("entity slot = %v, want updated entity", entity)
	}
}

func TestBridge_CreatePrepends(t *testing.T) {
	store := cache.NewMemory()
	d := realtime.NewDispatcher(nil, nil)
	New(store).Bind(d, scope)

	seedList(store, "orders", "a", "b")

	dispatchEvent(d, "order.created", "c", nil)

	list := cachedList(t, store, "orders")
	if len(list) != 3 {
		t.Fatalf("list length = %d, want 3", len(list))
	}
	if list[0]["id"] != "c" || list[1]["id"] != "a" || list[2]["id"] != "b" {
		t.Errorf("list order = %v %v %v, want c a b", list[0]["id"], list[1]["id"], list[2]["id"])
	}
}

func TestBridge_CreateWithExistingIDReplaces(t *testing.T) {
	store := cache.NewMemory()
	d := realtime.NewDispatcher(nil, nil)
	New(store).Bind(d, scope)

	seedList(store, "calls", "c1", "c2")

	// A duplicate create (redelivery) must not grow the list.
	dispatchEvent(d, "call.started", "c1", map[string]any{"status": "ringing"})

	list := cachedList(t, store, "calls")
	if len(list) != 2 {
		t.Fatalf("list length = %d, want 2", len(list))
	}
	if list[0]["status"] != "ringing" {
		t.Errorf("list[0] = %v, want replaced entity", list[0])
	}
}

func TestBridge_UpdateWithoutMatchIsListNoOp(t *testing.T) {
	store := cache.NewMemory()
	d := realtime.NewDispatcher(nil, nil)
	New(store).Bind(d, scope)

	seedList(store, "orders", "a")

	dispatchEvent(d, "order.updated", "zz", nil)

	list := cachedList(t, store, "orders")
	if len(list) != 1 || list[0]["id"] != "a" {
		t.Errorf("list = %v, want phantom entity kept out", list)
	}

	// The entity slot is still written.
	if _, ok := store.Get(cache.EntityKey("orders", scope, "zz")); !ok {
		t.Error("entity slot not written for unmatched update")
	}
}

func TestBridge_NoCachedListMeansNoListWrite(t *testing.T) {
	store := cache.NewMemory()
	d := realtime.NewDispatcher(nil, nil)
	New(store).Bind(d, scope)

	dispatchEvent(d, "reservation.created", "r1", nil)

	if _, ok := store.Get(cache.ListKey("reservations", scope)); ok {
		t.Error("bridge invented a list the cache never loaded")
	}
	if _, ok := store.Get(cache.EntityKey("reservations", scope, "r1")); !ok {
		t.Error("entity slot not written")
	}
}

func TestBridge_AggregatesInvalidated(t *testing.T) {
	store := cache.NewMemory()
	d := realtime.NewDispatcher(nil, nil)
	New(store).Bind(d, scope)

	store.Set(cache.ListKey("order.stats", scope), map[string]any{"total": 10})
	store.Set(cache.ListKey("call.stats", scope), map[string]any{"total": 3})

	dispatchEvent(d, "order.completed", "a", nil)

	if _, ok := store.Get(cache.ListKey("order.stats", scope)); ok {
		t.Error("order.stats not invalidated")
	}
	if _, ok := store.Get(cache.ListKey("call.stats", scope)); !ok {
		t.Error("unrelated aggregate invalidated")
	}
}

func TestBridge_EventWithoutIDDropped(t *testing.T) {
	store := cache.NewMemory()
	d := realtime.NewDispatcher(nil, nil)
	New(store).Bind(d, scope)

	seedList(store, "orders", "a")
	store.Set(cache.ListKey("order.stats", scope), 1)

	d.Dispatch([]byte(`{"type":"order.updated","payload":{"status":"confirmed"}}`))

	if list := cachedList(t, store, "orders"); len(list) != 1 {
		t.Error("id-less event mutated the list")
	}
	if _, ok := store.Get(cache.ListKey("order.stats", scope)); !ok {
		t.Error("id-less event invalidated aggregates")
	}
}

func TestBridge_RebindSwitchesScope(t *testing.T) {
	store := cache.NewMemory()
	d := realtime.NewDispatcher(nil, nil)

	b := New(store)
	b.Bind(d, "tenant-1")
	b.Bind(d, "tenant-2")

	if n := d.SubscriberCount(); n != 1 {
		t.Fatalf("SubscriberCount = %d, want 1 after rebind", n)
	}

	dispatchEvent(d, "order.updated", "a", nil)

	if _, ok := store.Get(cache.EntityKey("orders", "tenant-1", "a")); ok {
		t.Error("event written into the old tenant scope")
	}
	if _, ok := store.Get(cache.EntityKey("orders", "tenant-2", "a")); !ok {
		t.Error("event not written into the active tenant scope")
	}
}

func TestBridge_UnbindStopsMutations(t *testing.T) {
	store := cache.NewMemory()
	d := realtime.NewDispatcher(nil, nil)

	b := New(store)
	b.Bind(d, scope)
	b.Unbind()

	if n := d.SubscriberCount(); n != 0 {
		t.Fatalf("SubscriberCount = %d, want 0 after unbind", n)
	}

	dispatchEvent(d, "order.created", "a", nil)

	if _, ok := store.Get(cache.EntityKey("orders", scope, "a")); ok {
		t.Error("unbound bridge still wrote to the cache")
	}
}
