package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestMemory_SetGet(t *testing.T) {
	m := NewMemory()

	key := EntityKey("orders", "tenant-1", "o1")
	if _, ok := m.Get(key); ok {
		t.Fatal("empty store reported a hit")
	}

	m.Set(key, map[string]any{"id": "o1"})
	v, ok := m.Get(key)
	if !ok {
		t.Fatal("stored key not found")
	}
	if v.(map[string]any)["id"] != "o1" {
		t.Errorf("value = %v, want id=o1", v)
	}

	m.Set(key, map[string]any{"id": "o1", "status": "confirmed"})
	v, _ = m.Get(key)
	if v.(map[string]any)["status"] != "confirmed" {
		t.Error("second Set did not replace the entry")
	}
}

func TestMemory_KeysAreScoped(t *testing.T) {
	m := NewMemory()

	m.Set(ListKey("orders", "tenant-1"), "a")
	m.Set(ListKey("orders", "tenant-2"), "b")
	m.Set(EntityKey("orders", "tenant-1", "o1"), "c")

	if m.Len() != 3 {
		t.Fatalf("Len = %d, want 3 distinct entries", m.Len())
	}
	if v, _ := m.Get(ListKey("orders", "tenant-1")); v != "a" {
		t.Errorf("tenant-1 list = %v, want a", v)
	}
	if v, _ := m.Get(ListKey("orders", "tenant-2")); v != "b" {
		t.Errorf("tenant-2 list = %v, want b", v)
	}
}

func TestMemory_Invalidate(t *testing.T) {
	m := NewMemory()

	key := ListKey("order.stats", "tenant-1")
	m.Set(key, 42)
	m.Invalidate(key)

	if _, ok := m.Get(key); ok {
		t.Error("invalidated key still present")
	}

	// Invalidating an absent key is harmless.
	m.Invalidate(key)
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	m := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := EntityKey("calls", "tenant-1", fmt.Sprintf("c%d", j%10))
				m.Set(key, n)
				m.Get(key)
				if j%5 == 0 {
					m.Invalidate(key)
				}
			}
		}(i)
	}
	wg.Wait()
}
