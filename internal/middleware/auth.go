package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/inkwell/inkwell/internal/auth"
)

type key string

// UserIDKey holds the authenticated user's id in the request context.
const UserIDKey key = "user_id"

// AccessTokenCookie is the HTTP-only cookie that carries the session token.
const AccessTokenCookie = "access_token"

// RequireAuth gates mutating endpoints. The token travels in the access_token
// cookie; a missing cookie is 401, a bad or expired token is 403. On success
// the resolved user id is attached to the request context and nothing else
// happens: the guard never touches a store.
func RequireAuth(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(AccessTokenCookie)
			if err != nil || cookie.Value == "" {
				jsonError(w, "not authenticated", http.StatusUnauthorized)
				return
			}

			userID, err := tokens.Verify(cookie.Value)
			if err != nil {
				msg := "token is not valid"
				if errors.Is(err, auth.ErrExpiredToken) {
					msg = "token expired"
				}
				jsonError(w, msg, http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID extracts the authenticated user's id placed by RequireAuth.
// ok is false on routes the guard did not run on.
func UserID(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(UserIDKey).(int)
	return id, ok
}

func jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
