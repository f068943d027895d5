// internal/auth/auth_test.go
package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	playerID := uuid.New()
	token, err := IssueToken("test-secret", playerID, "alice")
	require.NoError(t, err)

	gotID, gotName, err := VerifyToken("test-secret", token)
	require.NoError(t, err)
	assert.Equal(t, playerID, gotID)
	assert.Equal(t, "alice", gotName)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := IssueToken("secret-a", uuid.New(), "bob")
	require.NoError(t, err)

	_, _, err = VerifyToken("secret-b", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGarbage(t *testing.T) {
	_, _, err := VerifyToken("secret", "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
