package cache

import (
	"testing"
	"time"
)

func TestLRUCacheGetSet(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)

	c.Set("a", "1")
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Errorf("Get(a) = %q, %v; want 1, true", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) should report absence")
	}
}

func TestLRUCacheEvictsOldest(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // refresh a
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should survive eviction")
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUCacheTTLExpiry(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)

	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expired entry should not be returned")
	}
}

func TestManagerSweepsExpiredEntries(t *testing.T) {
	c := NewLRUCache[int](10, 5*time.Millisecond)
	c.Set("a", 1)

	m := NewManager()
	m.Register(c)
	m.StartCleanup(10 * time.Millisecond)
	defer m.Stop()

	deadline := time.Now().Add(time.Second)
	for c.Size() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d after sweep, want 0", c.Size())
	}
}

func TestLRUCacheDelete(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	c.Set("a", 1)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted entry should be gone")
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0", c.Size())
	}
}
