package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	ttlCache := New()

	if _, found := ttlCache.Get("missing"); found {
		t.Error("expected miss on empty cache")
	}

	ttlCache.Set("rates", "payload", time.Minute)

	value, found := ttlCache.Get("rates")
	if !found {
		t.Fatal("expected hit")
	}
	if value.(string) != "payload" {
		t.Errorf("expected payload, got %v", value)
	}
}

func TestExpiry(t *testing.T) {
	ttlCache := New()
	ttlCache.Set("short-lived", 42, 10*time.Millisecond)

	if _, found := ttlCache.Get("short-lived"); !found {
		t.Fatal("expected hit before expiry")
	}

	time.Sleep(20 * time.Millisecond)

	if _, found := ttlCache.Get("short-lived"); found {
		t.Error("expected miss after expiry")
	}
}

func TestSetReplacesEntry(t *testing.T) {
	ttlCache := New()
	ttlCache.Set("key", "first", time.Minute)
	ttlCache.Set("key", "second", time.Minute)

	value, found := ttlCache.Get("key")
	if !found || value.(string) != "second" {
		t.Errorf("expected second, got %v found=%v", value, found)
	}
	if ttlCache.Len() != 1 {
		t.Errorf("expected single entry, got %d", ttlCache.Len())
	}
}

func TestPurge(t *testing.T) {
	ttlCache := New()
	ttlCache.Set("stale", 1, 10*time.Millisecond)
	ttlCache.Set("fresh", 2, time.Minute)

	time.Sleep(20 * time.Millisecond)
	ttlCache.Purge()

	if ttlCache.Len() != 1 {
		t.Errorf("expected 1 entry after purge, got %d", ttlCache.Len())
	}
	if _, found := ttlCache.Get("fresh"); !found {
		t.Error("purge must keep live entries")
	}
}

func TestConcurrentAccess(t *testing.T) {
	ttlCache := New()

	var waitGroup sync.WaitGroup
	for worker := 0; worker < 10; worker++ {
		waitGroup.Add(1)
		go func(id int) {
			defer waitGroup.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("key-%d-%d", id, i)
				ttlCache.Set(key, i, time.Minute)
				ttlCache.Get(key)
			}
		}(worker)
	}
	waitGroup.Wait()

	if ttlCache.Len() != 1000 {
		t.Errorf("expected 1000 entries, got %d", ttlCache.Len())
	}
}
