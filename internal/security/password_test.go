package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	hash, err := HashPassword("Secret123", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotContains(t, string(hash), "Secret123")

	assert.True(t, VerifyPassword("Secret123", hash))
	assert.False(t, VerifyPassword("secret123", hash))
	assert.False(t, VerifyPassword("", hash))
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	first, err := HashPassword("Secret123", bcrypt.MinCost)
	require.NoError(t, err)
	second, err := HashPassword("Secret123", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, VerifyPassword("Secret123", first))
	assert.True(t, VerifyPassword("Secret123", second))
}

func TestVerifyPassword_FailsSafely(t *testing.T) {
	assert.False(t, VerifyPassword("anything", nil))
	assert.False(t, VerifyPassword("anything", []byte{}))
	assert.False(t, VerifyPassword("anything", []byte("not-a-bcrypt-digest")))
}
