package token_test

import (
	"testing"

	"github.com/accounts-service/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewSessionToken tests token length, charset and uniqueness
func TestNewSessionToken(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 32; i++ {
		tok, err := token.NewSessionToken()
		require.NoError(t, err)

		assert.Len(t, tok, token.SessionTokenLength)
		for _, r := range tok {
			isAlphaNumeric := (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
			assert.True(t, isAlphaNumeric, "Token characters stay URL and cookie safe")
		}

		assert.False(t, seen[tok], "Tokens must not repeat")
		seen[tok] = true
	}
}
