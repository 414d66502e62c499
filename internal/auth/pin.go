package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPIN returns the stored admin PIN format: unsalted SHA-256, hex encoded.
// Existing documents use this format, so it stays the default.
func HashPIN(pin string) string {
	sum := sha256.Sum256([]byte(pin))
	return hex.EncodeToString(sum[:])
}

// HashPINBcrypt returns a bcrypt hash of pin. VerifyPIN accepts both formats.
func HashPINBcrypt(pin string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt pin: %w", err)
	}
	return string(h), nil
}

// VerifyPIN reports whether pin matches the stored hash.
func VerifyPIN(storedHash, pin string) bool {
	if storedHash == "" {
		return false
	}
	if strings.HasPrefix(storedHash, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(pin)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(HashPIN(pin))) == 1
}
