package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
)

// TokenBytes is the entropy of a session token. Tokens are hex encoded, so
// every token is 2*TokenBytes characters long.
const TokenBytes = 24

// NewToken returns an opaque bearer token drawn from crypto/rand.
func NewToken() (string, error) {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. It returns "" when the header is absent or uses another scheme.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// NormalizeEmail trims and lower-cases an email; it is the identity key for
// students.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
