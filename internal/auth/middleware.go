package auth

import "net/http"

// CookieName is the HttpOnly cookie carrying the admin session token.
// HttpOnly means page JavaScript cannot read it, so a scripted page can't
// exfiltrate the session.
const CookieName = "admin_session"

// RequireAdmin is a middleware that guards the admin routes.
//
// It reads the session token from the cookie, validates it, and either
// passes the request through or answers 401 and stops the chain. There is
// no optional variant — a route is admin or it isn't.
func RequireAdmin(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil || tokens.ValidateAdmin(cookie.Value) != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized","message":"admin authentication required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
