// Package state contains the two state containers that own all of Quote
// Studio's data: AuthState (the user directory and the logged-in user) and
// QuotesState (quotes, the like-set, comment threads, toasts).
//
// CONTAINERS, NOT REPOSITORIES:
// The persisted unit here is a whole slice of state — the entire quote
// collection under one key, the entire user directory under another — not
// individual rows. Each mutating operation updates the in-memory state
// first, then re-persists exactly the slices it touched through the
// injected storage.Store. In-memory state is authoritative for the running
// session; a persistence failure is logged and otherwise ignored.
//
// CONSISTENCY RULES (the part worth testing precisely):
//   - likes never go negative and only move through ToggleLike, by ±1
//   - the like-set and comment threads never reference a quote that has
//     been deleted (deletes cascade across all three slices)
//   - the current user, if set, exists in the user directory
//   - author references are weak: resolve them through Resolve, which
//     substitutes a placeholder identity on a miss
//
// Containers are plain dependency-injected values — constructed once in
// the server's composition root and passed by reference. No globals.
package state

import "sync"

// subscribers is a registry of change callbacks shared by both containers.
//
// The original UI re-rendered implicitly whenever container state changed;
// here that contract is explicit: consumers call Subscribe and get back an
// unsubscribe func. Callbacks fire after every completed mutation, outside
// the container's state lock, so a callback may safely call back into the
// container.
type subscribers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func()
}

// add registers fn and returns its unsubscribe func. Unsubscribing twice
// is harmless.
func (s *subscribers) add(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = make(map[int]func())
	}
	id := s.next
	s.next++
	s.fns[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.fns, id)
	}
}

// notify invokes every registered callback. The callback list is copied
// under the lock and invoked outside it.
func (s *subscribers) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
