package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToken(t *testing.T) {
	token, id, err := NewToken()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(token, TokenPrefix))
	assert.Len(t, id, 64)
	assert.Equal(t, HashToken(token), id)
}

func TestNewToken_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, _, err := NewToken()
		require.NoError(t, err)
		assert.False(t, seen[token], "duplicate token %s", token)
		seen[token] = true
	}
}
