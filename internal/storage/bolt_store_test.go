package storage

import (
	"testing"
	"time"
)

func TestBoltStoreStoresAndExpiresEntries(t *testing.T) {
	dir := t.TempDir()
	opts := Options{CleanupInterval: 1 * time.Second}

	storeRaw, err := openBolt(dir+"/cache.db", opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	_, found, err := store.Get("token")
	if err != nil || found {
		t.Fatalf("expected empty cache, found=%v err=%v", found, err)
	}

	if err := store.Put("token", "abc", time.Second); err != nil {
		t.Fatalf("Put: %v", err)
	}

	value, found, err := store.Get("token")
	if err != nil || !found || value != "abc" {
		t.Fatalf("expected cached value, got value=%q found=%v err=%v", value, found, err)
	}

	// Fast-forward cleanup cadence and trigger expiry.
	store.lastCleanup.Store(time.Now().Add(-2 * time.Second).Unix())
	time.Sleep(1100 * time.Millisecond)

	_, found, err = store.Get("token")
	if err != nil {
		t.Fatalf("Get after expiry: %v", err)
	}
	if found {
		t.Fatalf("expected entry to expire and be removed")
	}
}

func TestBoltStoreRejectsNonPositiveTTL(t *testing.T) {
	store, err := openBolt(t.TempDir()+"/cache.db", normalizeOptions(Options{}))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	defer store.Close()

	if err := store.Put("k", "v", 0); err == nil {
		t.Fatalf("expected error for zero ttl")
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Put("x", "y", time.Minute); err != nil {
		t.Fatalf("noop store Put: %v", err)
	}
	if _, found, _ := store.Get("x"); found {
		t.Fatalf("noop store must never hit")
	}
}

func TestMemoryStoreExpires(t *testing.T) {
	store, err := NewStore("memory", "", Options{})
	if err != nil {
		t.Fatalf("NewStore memory: %v", err)
	}
	if err := store.Put("k", "v", 20*time.Millisecond); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if v, found, _ := store.Get("k"); !found || v != "v" {
		t.Fatalf("expected hit, got %q %v", v, found)
	}
	time.Sleep(30 * time.Millisecond)
	if _, found, _ := store.Get("k"); found {
		t.Fatalf("expected entry to expire")
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unknown storage type")
	}
}

func TestStoresDeleteEntries(t *testing.T) {
	bolt, err := NewStore("bbolt", t.TempDir()+"/cache.db", Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer bolt.Close()

	for name, store := range map[string]Store{"bbolt": bolt, "memory": newMemoryStore()} {
		if err := store.Put("token", "stale", time.Hour); err != nil {
			t.Fatalf("%s Put: %v", name, err)
		}
		if err := store.Delete("token"); err != nil {
			t.Fatalf("%s Delete: %v", name, err)
		}
		if _, found, err := store.Get("token"); err != nil || found {
			t.Fatalf("%s: expected entry gone, found=%v err=%v", name, found, err)
		}
		if err := store.Delete("missing"); err != nil {
			t.Fatalf("%s: deleting a missing key: %v", name, err)
		}
	}
}
