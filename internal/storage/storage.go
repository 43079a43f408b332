// Package storage defines the persistent key-value store the state
// containers write through.
//
// Quote Studio's state lives in a handful of named JSON documents — the
// whole user directory under one key, the whole quote collection under
// another. That shape comes straight from the app's history: state was
// originally persisted to browser localStorage, one JSON blob per key.
// Keeping the same contract server-side means the containers stay simple
// (marshal the slice, set the key) and hydration is a single Get per key
// at startup.
//
// WHY AN INTERFACE?
// Same reason the repository layer is an interface: the containers are
// tested against a tiny in-memory fake, and the SQLite implementation can
// be swapped without touching them. See internal/storage/sqlite.
package storage

import "context"

// Keys for every persisted slice. Each is a separately stored JSON value;
// a mutation re-persists only the slices it touched.
const (
	KeyUsers       = "users"                // map[string]model.User
	KeyCurrentUser = "currentUser"          // model.User, absent when logged out
	KeyQuotes      = "quotes"               // []model.QuoteContent
	KeyLikedQuotes = "likedQuotes"          // []string (set semantics)
	KeyComments    = "comments"             // map[string][]model.Comment
	KeyAdminAuthed = "isAdminAuthenticated" // "true"/"false"
)

// Store is a persistent key-value store for JSON documents.
//
// FAILURE CONTRACT:
// Every method can fail (disk full, store unavailable, corrupt row).
// Callers log the error and carry on with their in-memory state — a
// persistence failure must never crash a container operation or leave it
// half-applied in memory.
type Store interface {
	// Get returns the raw JSON stored under key. The bool reports whether
	// the key exists; a missing key is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores raw JSON under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error
}
