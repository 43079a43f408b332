package state

import (
	"context"
	"testing"

	"github.com/sakif/quote-studio/internal/model"
	"github.com/sakif/quote-studio/internal/storage"
)

func newTestAuth(t *testing.T) (*AuthState, *memStore) {
	t.Helper()
	store := newMemStore()
	return NewAuthState(store, testLogger()), store
}

// =========================================================================
// LOGIN TESTS
// =========================================================================

func TestLogin(t *testing.T) {
	auth, store := newTestAuth(t)

	user := auth.Login(context.Background(), "Ada")
	if user == nil {
		t.Fatal("Login() returned nil for a valid name")
	}
	if user.ID == "" {
		t.Error("Login() did not assign an id")
	}
	if user.Name != "Ada" {
		t.Errorf("Name = %q, want %q", user.Name, "Ada")
	}
	if user.Avatar != model.AvatarURL("Ada") {
		t.Errorf("Avatar = %q, want derived from name", user.Avatar)
	}
	if user.CreatedAt.IsZero() {
		t.Error("Login() did not set CreatedAt")
	}

	// The new account is both a directory entry and the current user.
	if _, ok := auth.Users()[user.ID]; !ok {
		t.Error("new user missing from directory")
	}
	current, ok := auth.CurrentUser()
	if !ok || current.ID != user.ID {
		t.Errorf("CurrentUser() = (%v, %v), want the new user", current, ok)
	}

	// Both slices were persisted.
	if !store.has(storage.KeyUsers) {
		t.Error("users slice was not persisted")
	}
	if !store.has(storage.KeyCurrentUser) {
		t.Error("currentUser slice was not persisted")
	}
}

func TestLogin_TrimsName(t *testing.T) {
	auth, _ := newTestAuth(t)

	user := auth.Login(context.Background(), "  Ada  ")
	if user == nil {
		t.Fatal("Login() returned nil")
	}
	if user.Name != "Ada" {
		t.Errorf("Name = %q, want trimmed %q", user.Name, "Ada")
	}
}

func TestLogin_EmptyAndWhitespaceNamesAreNoOps(t *testing.T) {
	auth, _ := newTestAuth(t)
	before := len(auth.Users())

	for _, name := range []string{"", "   "} {
		if user := auth.Login(context.Background(), name); user != nil {
			t.Errorf("Login(%q) = %v, want nil", name, user)
		}
	}

	if got := len(auth.Users()); got != before {
		t.Errorf("directory grew from %d to %d entries", before, got)
	}
	if _, ok := auth.CurrentUser(); ok {
		t.Error("CurrentUser() should remain absent after no-op logins")
	}
}

func TestLogin_EachLoginCreatesFreshAccount(t *testing.T) {
	auth, _ := newTestAuth(t)
	ctx := context.Background()

	first := auth.Login(ctx, "Ada")
	second := auth.Login(ctx, "Ada")
	if first.ID == second.ID {
		t.Error("two logins with the same name should create distinct accounts")
	}

	current, _ := auth.CurrentUser()
	if current.ID != second.ID {
		t.Errorf("CurrentUser() = %s, want the most recent login %s", current.ID, second.ID)
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestUpdateUser(t *testing.T) {
	auth, _ := newTestAuth(t)
	user := auth.Login(context.Background(), "Ada")

	name := "Countess"
	bio := "writes programs"
	if !auth.UpdateUser(context.Background(), user.ID, model.UserUpdate{Name: &name, Bio: &bio}) {
		t.Fatal("UpdateUser() = false for an existing user")
	}

	got := auth.Users()[user.ID]
	if got.Name != "Countess" || got.Bio != "writes programs" {
		t.Errorf("updated user = %+v", got)
	}
	// The avatar was derived at creation and must not change on rename.
	if got.Avatar != model.AvatarURL("Ada") {
		t.Errorf("Avatar = %q, want the original", got.Avatar)
	}

	// The target was the current user, so the pointer follows.
	current, _ := auth.CurrentUser()
	if current.Name != "Countess" {
		t.Errorf("CurrentUser().Name = %q, want %q", current.Name, "Countess")
	}
}

func TestUpdateUser_PartialFields(t *testing.T) {
	auth, _ := newTestAuth(t)
	user := auth.Login(context.Background(), "Ada")

	bio := "only the bio"
	auth.UpdateUser(context.Background(), user.ID, model.UserUpdate{Bio: &bio})

	got := auth.Users()[user.ID]
	if got.Name != "Ada" {
		t.Errorf("Name = %q, want untouched %q", got.Name, "Ada")
	}
	if got.Bio != "only the bio" {
		t.Errorf("Bio = %q", got.Bio)
	}
}

func TestUpdateUser_UnknownIDLeavesDirectoryUnchanged(t *testing.T) {
	auth, _ := newTestAuth(t)
	before := auth.Users()

	name := "ghost"
	if auth.UpdateUser(context.Background(), "nope", model.UserUpdate{Name: &name}) {
		t.Error("UpdateUser() = true for an unknown id")
	}
	if got := auth.Users(); len(got) != len(before) {
		t.Errorf("directory changed: %d -> %d entries", len(before), len(got))
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestDeleteUser_ClearsCurrentUser(t *testing.T) {
	auth, store := newTestAuth(t)
	user := auth.Login(context.Background(), "Ada")

	auth.DeleteUser(context.Background(), user.ID)

	if _, ok := auth.Users()[user.ID]; ok {
		t.Error("user still in directory after DeleteUser")
	}
	if _, ok := auth.CurrentUser(); ok {
		t.Error("CurrentUser() should be absent after deleting the current account")
	}
	if store.has(storage.KeyCurrentUser) {
		t.Error("persisted currentUser record should be removed")
	}
}

func TestDeleteUser_OtherAccountKeepsSession(t *testing.T) {
	auth, _ := newTestAuth(t)
	ctx := context.Background()

	other := auth.Login(ctx, "Grace")
	current := auth.Login(ctx, "Ada")

	auth.DeleteUser(ctx, other.ID)

	got, ok := auth.CurrentUser()
	if !ok || got.ID != current.ID {
		t.Errorf("CurrentUser() = (%v, %v), want %s to stay logged in", got, ok, current.ID)
	}
}

// =========================================================================
// RESOLVE TESTS
// =========================================================================

func TestResolve_PlaceholderForDanglingReference(t *testing.T) {
	auth, _ := newTestAuth(t)
	user := auth.Login(context.Background(), "Ada")

	if got := auth.Resolve(user.ID); got.Name != "Ada" {
		t.Errorf("Resolve(existing) = %+v", got)
	}

	auth.DeleteUser(context.Background(), user.ID)

	got := auth.Resolve(user.ID)
	if got.Name != "Unknown" {
		t.Errorf("Resolve(deleted).Name = %q, want the placeholder identity", got.Name)
	}
	if got.Avatar == "" {
		t.Error("placeholder identity should carry an avatar")
	}
}

// =========================================================================
// HYDRATION TESTS
// =========================================================================

func TestHydration_RoundTrip(t *testing.T) {
	store := newMemStore()
	first := NewAuthState(store, testLogger())
	user := first.Login(context.Background(), "Ada")

	// A second container over the same store sees the same state.
	second := NewAuthState(store, testLogger())
	if _, ok := second.Users()[user.ID]; !ok {
		t.Error("rehydrated directory is missing the logged-in user")
	}
	current, ok := second.CurrentUser()
	if !ok || current.ID != user.ID {
		t.Errorf("rehydrated CurrentUser() = (%v, %v)", current, ok)
	}
}

func TestHydration_DefaultsOnEmptyStore(t *testing.T) {
	auth, _ := newTestAuth(t)

	users := auth.Users()
	if _, ok := users[SeedAIUserID]; !ok {
		t.Error("seed AI user missing from default directory")
	}
	if _, ok := users[SeedGuestUserID]; !ok {
		t.Error("seed guest missing from default directory")
	}
	if _, ok := auth.CurrentUser(); ok {
		t.Error("a fresh store should start logged out")
	}
}

func TestHydration_MalformedUsersFallsBackToDefaults(t *testing.T) {
	store := newMemStore()
	store.put(storage.KeyUsers, `{not json`)

	auth := NewAuthState(store, testLogger())
	if _, ok := auth.Users()[SeedAIUserID]; !ok {
		t.Error("malformed users document should fall back to the seed directory")
	}
}

func TestHydration_NullUsersFallsBackToDefaults(t *testing.T) {
	// `null` unmarshals into a nil map without an error, so it must be
	// caught explicitly — otherwise the first Login would panic writing
	// into nil container state, on every restart.
	store := newMemStore()
	store.put(storage.KeyUsers, `null`)

	auth := NewAuthState(store, testLogger())
	if _, ok := auth.Users()[SeedAIUserID]; !ok {
		t.Error("null users document should fall back to the seed directory")
	}

	user := auth.Login(context.Background(), "Ada")
	if user == nil {
		t.Fatal("login after null-document hydration should succeed")
	}
	if _, ok := auth.Users()[user.ID]; !ok {
		t.Error("logged-in user should be in the directory")
	}
}

func TestHydration_DanglingCurrentUserDropped(t *testing.T) {
	store := newMemStore()
	store.put(storage.KeyUsers, `{}`)
	store.put(storage.KeyCurrentUser, `{"id":"gone","name":"Ghost"}`)

	auth := NewAuthState(store, testLogger())
	if _, ok := auth.CurrentUser(); ok {
		t.Error("a current user outside the directory must be dropped on hydration")
	}
}

// =========================================================================
// FAILURE SEMANTICS
// =========================================================================

func TestPersistenceFailureKeepsInMemoryState(t *testing.T) {
	store := newMemStore()
	store.failSets = true

	auth := NewAuthState(store, testLogger())
	user := auth.Login(context.Background(), "Ada")

	// Nothing reached the store, but the session state is intact.
	if user == nil {
		t.Fatal("Login() should succeed in memory despite persistence failures")
	}
	if store.has(storage.KeyUsers) {
		t.Error("store should be empty when every Set fails")
	}
	if current, ok := auth.CurrentUser(); !ok || current.ID != user.ID {
		t.Error("in-memory state must remain authoritative on persistence failure")
	}
}

// =========================================================================
// SUBSCRIPTIONS
// =========================================================================

func TestSubscribe(t *testing.T) {
	auth, _ := newTestAuth(t)
	ctx := context.Background()

	calls := 0
	unsubscribe := auth.Subscribe(func() { calls++ })

	user := auth.Login(ctx, "Ada")
	if calls != 1 {
		t.Errorf("after Login: calls = %d, want 1", calls)
	}

	// No-op operations do not notify.
	auth.Login(ctx, "   ")
	if calls != 1 {
		t.Errorf("after no-op Login: calls = %d, want 1", calls)
	}

	unsubscribe()
	auth.DeleteUser(ctx, user.ID)
	if calls != 1 {
		t.Errorf("after unsubscribe: calls = %d, want 1", calls)
	}
}
