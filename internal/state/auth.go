package state

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/quote-studio/internal/model"
	"github.com/sakif/quote-studio/internal/storage"
)

// Seed accounts present on first run (or whenever the persisted directory
// is missing or unreadable). "user-ai" authors the autonomous studio's
// quotes; "user-0" is the browsing guest.
const (
	SeedAIUserID    = "user-ai"
	SeedGuestUserID = "user-0"
)

func defaultUsers() map[string]model.User {
	return map[string]model.User{
		SeedAIUserID: {
			ID:     SeedAIUserID,
			Name:   "AI Artisan",
			Avatar: model.AvatarURL("aiartisan"),
		},
		SeedGuestUserID: {
			ID:     SeedGuestUserID,
			Name:   "Guest",
			Avatar: model.AvatarURL("guest"),
		},
	}
}

// AuthState owns the user directory and the current-user pointer.
//
// PERSISTED SLICES: "users" (the whole directory) and "currentUser" (the
// logged-in user, absent when logged out). Every mutating operation
// re-persists the slices it touched before returning.
type AuthState struct {
	mu      sync.Mutex
	users   map[string]model.User
	current *model.User

	store  storage.Store
	logger *slog.Logger
	subs   subscribers
}

// NewAuthState constructs the container and hydrates it from the store.
//
// HYDRATION FALLBACK:
// A missing, unreadable, or malformed "users" document falls back to the
// built-in seed directory — never an error. Same for "currentUser", which
// additionally must reference a directory entry: a dangling pointer is
// dropped (behave as logged out) rather than violating the invariant that
// the current user, if set, exists in the directory.
func NewAuthState(store storage.Store, logger *slog.Logger) *AuthState {
	a := &AuthState{
		users:  defaultUsers(),
		store:  store,
		logger: logger,
	}

	ctx := context.Background()

	if raw, ok := a.load(ctx, storage.KeyUsers); ok {
		var users map[string]model.User
		if err := json.Unmarshal(raw, &users); err != nil {
			logger.Warn("malformed users document, falling back to defaults",
				slog.String("error", err.Error()),
			)
		} else if users == nil {
			// JSON `null` unmarshals into a nil map without error; treat it
			// like a missing document, never install it as container state.
			logger.Warn("null users document, falling back to defaults")
		} else {
			a.users = users
		}
	}

	if raw, ok := a.load(ctx, storage.KeyCurrentUser); ok {
		var u model.User
		if err := json.Unmarshal(raw, &u); err != nil {
			logger.Warn("malformed currentUser document, starting logged out",
				slog.String("error", err.Error()),
			)
		} else if _, exists := a.users[u.ID]; exists {
			a.current = &u
		} else {
			logger.Warn("currentUser not in directory, starting logged out",
				slog.String("id", u.ID),
			)
		}
	}

	return a
}

// Subscribe registers a change callback, invoked after every completed
// mutation. The returned func unregisters it.
func (a *AuthState) Subscribe(fn func()) func() {
	return a.subs.add(fn)
}

// Login creates a fresh account for the given display name and makes it
// the current user. A blank (or whitespace-only) name is a silent no-op
// that returns nil — no account is created, the current user is unchanged.
//
// Every login creates a NEW account, even for a name that has been seen
// before. That is the product's model: the display name is a label, not an
// identity.
func (a *AuthState) Login(ctx context.Context, name string) *model.User {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	user := model.User{
		ID:        xid.New().String(),
		Name:      name,
		Avatar:    model.AvatarURL(name),
		CreatedAt: time.Now(),
	}

	a.mu.Lock()
	a.users[user.ID] = user
	a.current = &user
	a.persistUsersLocked(ctx)
	a.persistCurrentLocked(ctx)
	a.mu.Unlock()

	a.logger.Info("user logged in",
		slog.String("id", user.ID),
		slog.String("name", user.Name),
	)
	a.subs.notify()
	return &user
}

// UpdateUser merges the provided fields into the directory entry. Only the
// name and bio are mutable. If the target is the current user, the
// current-user pointer is updated and re-persisted too. An unknown id
// leaves the directory unchanged and returns false.
func (a *AuthState) UpdateUser(ctx context.Context, id string, update model.UserUpdate) bool {
	a.mu.Lock()
	user, ok := a.users[id]
	if !ok {
		a.mu.Unlock()
		return false
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	a.users[id] = user
	a.persistUsersLocked(ctx)

	if a.current != nil && a.current.ID == id {
		a.current = &user
		a.persistCurrentLocked(ctx)
	}
	a.mu.Unlock()

	a.subs.notify()
	return true
}

// DeleteUser removes the directory entry unconditionally. If the deleted
// id is the current user, the current-user pointer is cleared and its
// persisted record removed — the application then behaves as logged out.
//
// Quotes authored by the user are NOT touched here; the account-deletion
// flow calls QuotesState.DeleteQuotesByAuthor alongside this. The two
// containers touch disjoint state, so the call order between them does not
// matter.
func (a *AuthState) DeleteUser(ctx context.Context, id string) {
	a.mu.Lock()
	delete(a.users, id)
	a.persistUsersLocked(ctx)

	if a.current != nil && a.current.ID == id {
		a.current = nil
		if err := a.store.Delete(ctx, storage.KeyCurrentUser); err != nil {
			a.logger.Error("failed to remove persisted currentUser",
				slog.String("error", err.Error()),
			)
		}
	}
	a.mu.Unlock()

	a.logger.Info("user deleted", slog.String("id", id))
	a.subs.notify()
}

// CurrentUser returns the logged-in user, or ok = false when logged out.
func (a *AuthState) CurrentUser() (model.User, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return model.User{}, false
	}
	return *a.current, true
}

// Users returns a copy of the user directory.
func (a *AuthState) Users() map[string]model.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	users := make(map[string]model.User, len(a.users))
	for id, u := range a.users {
		users[id] = u
	}
	return users
}

// Resolve looks up an author reference, substituting the placeholder
// "Unknown" identity when the user no longer exists. Call this instead of
// indexing the directory — authorId is a weak reference and may dangle.
func (a *AuthState) Resolve(id string) model.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	if u, ok := a.users[id]; ok {
		return u
	}
	return model.UnknownUser
}

// load fetches a raw document, logging (not propagating) store errors.
func (a *AuthState) load(ctx context.Context, key string) ([]byte, bool) {
	raw, ok, err := a.store.Get(ctx, key)
	if err != nil {
		a.logger.Error("failed to read persisted state",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return nil, false
	}
	return raw, ok
}

func (a *AuthState) persistUsersLocked(ctx context.Context) {
	a.persistLocked(ctx, storage.KeyUsers, a.users)
}

func (a *AuthState) persistCurrentLocked(ctx context.Context) {
	a.persistLocked(ctx, storage.KeyCurrentUser, a.current)
}

// persistLocked marshals v and writes it under key. Failures are logged
// and swallowed: in-memory state stays authoritative for the session, and
// no operation is retried.
func (a *AuthState) persistLocked(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		a.logger.Error("failed to marshal state", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	if err := a.store.Set(ctx, key, raw); err != nil {
		a.logger.Error("failed to persist state", slog.String("key", key), slog.String("error", err.Error()))
	}
}
