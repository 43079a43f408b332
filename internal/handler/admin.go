package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/quote-studio/internal/apperror"
	"github.com/sakif/quote-studio/internal/auth"
	"github.com/sakif/quote-studio/internal/stats"
	"github.com/sakif/quote-studio/internal/storage"
)

// AdminHandler gates the dashboard: passphrase login, logout, and the
// aggregate stats behind auth.RequireAdmin.
type AdminHandler struct {
	gate   *auth.Gate
	tokens *auth.TokenService
	stats  *stats.Service
	store  storage.Store
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(gate *auth.Gate, tokens *auth.TokenService, svc *stats.Service, store storage.Store, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{gate: gate, tokens: tokens, stats: svc, store: store, logger: logger}
}

// HandleLogin verifies the shared passphrase and sets the admin session
// cookie. The admin flag is also mirrored into the store so the persisted
// snapshot matches what the dashboard believes.
//
// HTTP: POST /api/admin/login
// REQUEST BODY: {"password": "..."}
func (h *AdminHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	if !h.gate.Verify(body.Password) {
		writeError(w, apperror.Unauthorized("incorrect password"))
		return
	}

	token, err := h.tokens.GenerateAdmin()
	if err != nil {
		h.logger.Error("failed to mint admin token", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	if err := h.store.Set(r.Context(), storage.KeyAdminAuthed, []byte(`"true"`)); err != nil {
		h.logger.Warn("failed to persist admin flag", slog.String("error", err.Error()))
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Hour / time.Second),
	})

	w.WriteHeader(http.StatusNoContent)
}

// HandleLogout clears the session cookie and the persisted flag.
//
// HTTP: POST /api/admin/logout
func (h *AdminHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), storage.KeyAdminAuthed); err != nil {
		h.logger.Warn("failed to clear admin flag", slog.String("error", err.Error()))
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	w.WriteHeader(http.StatusNoContent)
}

// HandleStats returns the dashboard aggregates. The router mounts this
// behind auth.RequireAdmin, so by the time it runs the caller holds a
// valid session cookie.
//
// HTTP: GET /api/admin/stats
func (h *AdminHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stats.Overview())
}
