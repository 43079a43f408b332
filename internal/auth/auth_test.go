package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestTokenService creates a TokenService with a fixed, known secret so
// tests are deterministic.
func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

// =========================================================================
// TOKEN SERVICE TESTS
// =========================================================================

func TestNewTokenService_ShortSecret(t *testing.T) {
	_, err := NewTokenService("short")
	if err == nil {
		t.Fatal("NewTokenService() should reject secrets shorter than 16 chars")
	}
}

func TestGenerateAndValidate(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.GenerateAdmin()
	if err != nil {
		t.Fatalf("GenerateAdmin() error = %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Errorf("token %q is not header.payload.signature", token)
	}

	if err := ts.ValidateAdmin(token); err != nil {
		t.Errorf("ValidateAdmin() error = %v", err)
	}
}

func TestValidate_RejectsGarbage(t *testing.T) {
	ts := newTestTokenService(t)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if err := ts.ValidateAdmin(token); err == nil {
			t.Errorf("ValidateAdmin(%q) should fail", token)
		}
	}
}

func TestValidate_RejectsWrongSecret(t *testing.T) {
	ts := newTestTokenService(t)
	other, err := NewTokenService("a-completely-different-secret!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	token, _ := ts.GenerateAdmin()
	if err := other.ValidateAdmin(token); err == nil {
		t.Error("a token signed with one secret must not validate under another")
	}
}

func TestGenerate_DistinctTokens(t *testing.T) {
	ts := newTestTokenService(t)

	a, _ := ts.GenerateAdmin()
	b, _ := ts.GenerateAdmin()
	if a == b {
		t.Error("two sessions issued back-to-back should carry distinct jtis")
	}
}

// =========================================================================
// GATE TESTS
// =========================================================================

func TestGate_DefaultPassphrase(t *testing.T) {
	g, err := NewGate("")
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}

	if !g.Verify(DefaultPassphrase) {
		t.Error("default passphrase should verify")
	}
	if g.Verify("wrong") {
		t.Error("wrong passphrase should not verify")
	}
	if g.Verify("") {
		t.Error("empty passphrase should not verify")
	}
}

func TestGate_RejectsMalformedHash(t *testing.T) {
	if _, err := NewGate("not-a-bcrypt-hash"); err == nil {
		t.Error("NewGate should reject a non-bcrypt configured hash")
	}
}

// =========================================================================
// MIDDLEWARE TESTS
// =========================================================================

func TestRequireAdmin(t *testing.T) {
	ts := newTestTokenService(t)
	protected := RequireAdmin(ts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("no cookie", func(t *testing.T) {
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil))
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rr.Code)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "bogus"})
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rr.Code)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		token, _ := ts.GenerateAdmin()
		req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rr.Code)
		}
	})
}
