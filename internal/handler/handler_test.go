package handler_test

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/sakif/quote-studio/internal/state"
	"github.com/sakif/quote-studio/internal/storage"
)

// memStore is an in-memory storage.Store so handler tests run against real
// containers without touching disk.
type memStore struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.docs[key]
	return value, ok, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, key)
	return nil
}

var _ storage.Store = (*memStore)(nil)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newStates builds a fresh AuthState + QuotesState pair over one store.
func newStates() (*state.AuthState, *state.QuotesState) {
	store := newMemStore()
	logger := testLogger()
	return state.NewAuthState(store, logger), state.NewQuotesState(store, logger)
}
