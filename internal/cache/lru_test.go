package cache

import (
	"testing"
	"time"
)

func TestLRUCacheEvictsOldest(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	if _, ok := c.Get("a"); ok {
		t.Fatal("oldest entry survived eviction")
	}
	if v, ok := c.Get("b"); !ok || v != 2 {
		t.Fatalf("Get(b) = %d, %v", v, ok)
	}
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Fatalf("Get(c) = %d, %v", v, ok)
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	c := NewLRUCache[string](4, time.Nanosecond)

	c.Set("k", "v")
	time.Sleep(time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry still readable")
	}
	if c.CleanExpired() != 0 {
		t.Fatal("Get did not remove the expired entry")
	}
}

func TestLRUCacheClear(t *testing.T) {
	c := NewLRUCache[int](4, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()

	if c.Size() != 0 {
		t.Fatalf("Size() = %d after Clear", c.Size())
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("entry survived Clear")
	}

	// The cache stays usable after a Clear.
	c.Set("c", 3)
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Fatalf("Get(c) = %d, %v", v, ok)
	}
}
