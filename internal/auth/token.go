package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ==========================
// Session tokens (JWT HS256)
// ==========================

var (
	// ErrInvalidToken is returned when a token's signature or shape is wrong.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token's expiry has passed.
	ErrExpiredToken = errors.New("token expired")
)

type sessionClaims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies stateless session tokens. The same secret is
// used for both directions; rotating it invalidates every outstanding token.
// There is no server-side session table and no revocation list.
type Tokens struct {
	Secret []byte
	TTL    time.Duration // zero means tokens never expire
}

// Issue signs a token whose payload carries only the user's id.
func (t *Tokens) Issue(userID int) (string, error) {
	claims := sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	if t.TTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(t.TTL))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature (and expiry, when set) and returns the user id
// the token was issued for. Attacker-controlled input never panics here; the
// outcome is always a typed error.
func (t *Tokens) Verify(tokenStr string) (int, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredToken
		}
		return 0, ErrInvalidToken
	}
	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}
