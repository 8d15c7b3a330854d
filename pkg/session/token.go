package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const (
	// TokenPrefix identifies session tokens
	TokenPrefix = "sid_"
	// TokenLength is the number of random bytes (32 bytes = 256 bits)
	TokenLength = 32
)

// NewToken creates a random session token and the id it is stored under.
// Format: sid_<base64url(32 random bytes)>
func NewToken() (token string, id string, err error) {
	randomBytes := make([]byte, TokenLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	token = TokenPrefix + base64.RawURLEncoding.EncodeToString(randomBytes)
	return token, HashToken(token), nil
}

// HashToken computes the SHA256 hash of a token for lookup
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
