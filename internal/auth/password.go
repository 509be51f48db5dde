package auth

import "golang.org/x/crypto/bcrypt"

// ==========================
// Password hashing (bcrypt)
// ==========================

// HashPassword derives a salted bcrypt digest from the plaintext password.
// The returned string embeds the algorithm parameters and salt, so
// VerifyPassword needs nothing besides the digest itself.
func HashPassword(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// VerifyPassword reports whether plaintext matches the stored digest.
// Malformed digests fail closed: the answer is false, never a panic.
// bcrypt's comparison is constant time.
func VerifyPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
