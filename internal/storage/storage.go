// Package storage provides the local cache used for credentials.
package storage

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Store is a small key/value cache whose entries expire.
type Store interface {
	Close() error
	Get(key string) (string, bool, error)
	Put(key, value string, ttl time.Duration) error
	Delete(key string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	CleanupInterval time.Duration
}

const defaultCleanupInterval = time.Hour

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "memory":
		return newMemoryStore(), nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                            { return nil }
func (noopStore) Get(string) (string, bool, error)        { return "", false, nil }
func (noopStore) Put(string, string, time.Duration) error { return nil }
func (noopStore) Delete(string) error                     { return nil }

type memoryEntry struct {
	value  string
	expiry time.Time
}

// memoryStore keeps entries in process memory only.
type memoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: make(map[string]memoryEntry)}
}

func (m *memoryStore) Close() error { return nil }

func (m *memoryStore) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if !entry.expiry.After(time.Now()) {
		delete(m.entries, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

func (m *memoryStore) Put(key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	m.mu.Lock()
	m.entries[key] = memoryEntry{value: value, expiry: time.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) Delete(key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}
