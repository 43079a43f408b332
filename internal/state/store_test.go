package state

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
)

// memStore is an in-memory fake of storage.Store for container tests.
//
// Instead of spinning up SQLite, it keeps documents in a map and can be
// told to fail every write (failSets) to exercise the "persistence failure
// is logged and ignored" contract.
//
// In production code you'd reach for testify/mock for more sophisticated
// fakes; for a three-method interface a hand-written one is clearer.
type memStore struct {
	mu       sync.Mutex
	docs     map[string][]byte
	failSets bool
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.docs[key]
	return raw, ok, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSets {
		return errors.New("memstore: quota exceeded")
	}
	m.docs[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, key)
	return nil
}

// put seeds a raw document, bypassing the failSets switch.
func (m *memStore) put(key string, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = []byte(value)
}

// has reports whether a document exists under key.
func (m *memStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.docs[key]
	return ok
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}
