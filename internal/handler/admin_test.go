package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sakif/quote-studio/internal/auth"
	"github.com/sakif/quote-studio/internal/handler"
	"github.com/sakif/quote-studio/internal/state"
	"github.com/sakif/quote-studio/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminHandler(t *testing.T) (*handler.AdminHandler, *auth.TokenService, *memStore) {
	t.Helper()

	gate, err := auth.NewGate("")
	require.NoError(t, err)
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars")
	require.NoError(t, err)

	store := newMemStore()
	logger := testLogger()
	authState := state.NewAuthState(store, logger)
	quotesState := state.NewQuotesState(store, logger)
	svc := stats.NewService(authState, quotesState)

	return handler.NewAdminHandler(gate, tokens, svc, store, logger), tokens, store
}

func TestAdminHandler_HandleLogin(t *testing.T) {
	t.Run("correct passphrase sets the session cookie", func(t *testing.T) {
		h, tokens, store := newAdminHandler(t)

		body := `{"password":"` + auth.DefaultPassphrase + `"}`
		rr := httptest.NewRecorder()
		h.HandleLogin(rr, httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewBufferString(body)))

		require.Equal(t, http.StatusNoContent, rr.Code)

		cookies := rr.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, auth.CookieName, cookies[0].Name)
		assert.NoError(t, tokens.ValidateAdmin(cookies[0].Value))

		// The flag is mirrored into the store.
		value, ok, err := store.Get(context.Background(), "isAdminAuthenticated")
		require.NoError(t, err)
		require.True(t, ok)
		assert.JSONEq(t, `"true"`, string(value))
	})

	t.Run("wrong passphrase is a 401", func(t *testing.T) {
		h, _, store := newAdminHandler(t)

		rr := httptest.NewRecorder()
		h.HandleLogin(rr, httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewBufferString(`{"password":"letmein"}`)))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		_, ok, err := store.Get(context.Background(), "isAdminAuthenticated")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestAdminHandler_HandleLogout(t *testing.T) {
	h, _, store := newAdminHandler(t)

	// Log in first so there is a flag to clear.
	body := `{"password":"` + auth.DefaultPassphrase + `"}`
	rr := httptest.NewRecorder()
	h.HandleLogin(rr, httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewBufferString(body)))
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	h.HandleLogout(rr, httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0)

	_, ok, err := store.Get(context.Background(), "isAdminAuthenticated")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdminHandler_HandleStats(t *testing.T) {
	h, tokens, _ := newAdminHandler(t)

	// Mounted behind RequireAdmin, the way the router wires it.
	protected := auth.RequireAdmin(tokens)(http.HandlerFunc(h.HandleStats))

	t.Run("without a session cookie", func(t *testing.T) {
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("with a valid session cookie", func(t *testing.T) {
		token, err := tokens.GenerateAdmin()
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var overview stats.Overview
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&overview))
		assert.Equal(t, 2, overview.TotalUsers) // the two seed accounts
		assert.Len(t, overview.QuotesPerDay, 7)
	})
}
