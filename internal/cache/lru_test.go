package cache

import (
	"testing"
	"time"
)

func TestLRUCache_GetSet(t *testing.T) {
	c := NewLRUCache[string](4, time.Minute)

	if _, ok := c.Get("overdraft"); ok {
		t.Fatal("empty cache should miss")
	}

	c.Set("overdraft", "200")
	got, ok := c.Get("overdraft")
	if !ok || got != "200" {
		t.Fatalf("Get() = %q, %v; want 200, true", got, ok)
	}

	c.Set("overdraft", "300")
	if got, _ := c.Get("overdraft"); got != "300" {
		t.Fatalf("overwrite failed, got %q", got)
	}
	if c.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", c.Size())
	}

	c.Delete("overdraft")
	if _, ok := c.Get("overdraft"); ok {
		t.Fatal("deleted key should miss")
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](4, time.Minute).WithClock(func() time.Time { return now })

	c.Set("income_amount", "100")
	now = now.Add(59 * time.Second)
	if _, ok := c.Get("income_amount"); !ok {
		t.Fatal("entry should still be valid")
	}

	now = now.Add(2 * time.Second)
	if _, ok := c.Get("income_amount"); ok {
		t.Fatal("entry should have expired")
	}
	if c.Size() != 0 {
		t.Fatalf("expired entry should be removed, size %d", c.Size())
	}
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a is now most recent
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should still be cached")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should be cached")
	}
}
