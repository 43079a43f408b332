// Package handler contains the HTTP layer: parse the request, call a
// container or service, write the response. No business rules live here —
// the containers own those — but input validation that protects the API
// surface (blank names, unknown categories) happens at this level so
// callers get a 400 instead of a silent no-op.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/quote-studio/internal/apperror"
	"github.com/sakif/quote-studio/internal/model"
	"github.com/sakif/quote-studio/internal/state"
)

// SessionHandler manages login, the current-user pointer, and profiles.
type SessionHandler struct {
	auth   *state.AuthState
	quotes *state.QuotesState // needed for the account-deletion cascade
	logger *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(auth *state.AuthState, quotes *state.QuotesState, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{auth: auth, quotes: quotes, logger: logger}
}

// HandleLogin creates a fresh account for a display name and logs it in.
//
// HTTP: POST /api/session
// REQUEST BODY: {"name": "Ada"}
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	user := h.auth.Login(r.Context(), body.Name)
	if user == nil {
		// The container treats a blank name as a silent no-op; the API
		// tells the caller why nothing happened.
		writeError(w, apperror.ValidationFailed("name", "display name is required"))
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// HandleCurrentUser returns the logged-in user, or 204 when logged out.
//
// HTTP: GET /api/session
func (h *SessionHandler) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.auth.CurrentUser()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleGetUser returns a user profile, substituting the placeholder
// identity for ids that no longer resolve — so quote cards can always
// render an author.
//
// HTTP: GET /api/users/{id}
func (h *SessionHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.auth.Resolve(r.PathValue("id")))
}

// HandleUpdateUser merges a partial profile update (name and/or bio).
//
// HTTP: PATCH /api/users/{id}
// REQUEST BODY: {"name": "Countess", "bio": "writes programs"} (both optional)
func (h *SessionHandler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var update model.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	if !h.auth.UpdateUser(r.Context(), id, update) {
		writeError(w, apperror.NotFound("user", id))
		return
	}

	writeJSON(w, http.StatusOK, h.auth.Resolve(id))
}

// HandleDeleteUser deletes an account and cascades to its quotes.
//
// HTTP: DELETE /api/users/{id}
//
// CASCADE ORDER:
// DeleteQuotesByAuthor and DeleteUser touch disjoint state (one container
// each), so their order doesn't affect the final result — but both must
// run, and each persists synchronously before returning, so there is no
// window where a half-applied cascade is the durable state.
func (h *SessionHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	h.quotes.DeleteQuotesByAuthor(r.Context(), id)
	h.auth.DeleteUser(r.Context(), id)

	h.logger.Info("account deleted", slog.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}
