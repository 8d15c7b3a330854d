package registration

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// CodeLength is the number of characters in a verification code
	CodeLength   = 6
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewCode returns a random verification code drawn uniformly from A-Z0-9
func NewCode() (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	code := make([]byte, CodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}
