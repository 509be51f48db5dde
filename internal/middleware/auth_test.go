package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/inkwell/inkwell/internal/auth"
)

func authedHandler(t *testing.T, wantID int) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserID(r.Context())
		if !ok {
			t.Error("user id missing from context")
		}
		if id != wantID {
			t.Errorf("context user id: got %d, want %d", id, wantID)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_NoCookie(t *testing.T) {
	tokens := &auth.Tokens{Secret: []byte("test-secret")}
	h := RequireAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run without a token")
	}))

	req := httptest.NewRequest("POST", "/api/posts", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	tokens := &auth.Tokens{Secret: []byte("test-secret")}
	h := RequireAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run with a bad token")
	}))

	req := httptest.NewRequest("POST", "/api/posts", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "garbage"})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rr.Code)
	}
}

func TestRequireAuth_ForeignSecret(t *testing.T) {
	issuer := &auth.Tokens{Secret: []byte("other-secret")}
	signed, err := issuer.Issue(5)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tokens := &auth.Tokens{Secret: []byte("test-secret")}
	h := RequireAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run with a foreign-signed token")
	}))

	req := httptest.NewRequest("POST", "/api/posts", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: signed})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rr.Code)
	}
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	tokens := &auth.Tokens{Secret: []byte("test-secret"), TTL: -time.Minute}
	signed, err := tokens.Issue(5)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	h := RequireAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run with an expired token")
	}))

	req := httptest.NewRequest("POST", "/api/posts", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: signed})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rr.Code)
	}
}

func TestRequireAuth_ValidToken(t *testing.T) {
	tokens := &auth.Tokens{Secret: []byte("test-secret"), TTL: time.Hour}
	signed, err := tokens.Issue(7)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	h := RequireAuth(tokens)(authedHandler(t, 7))

	req := httptest.NewRequest("POST", "/api/posts", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: signed})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rr.Code)
	}
}
