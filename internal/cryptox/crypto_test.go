package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	passwords := []string{"secret1", "p@ss w0rd", "ünïcødé-密码", strings.Repeat("x", 64)}

	for _, pw := range passwords {
		t.Run(pw, func(t *testing.T) {
			hash, err := HashPassword(pw, bcrypt.MinCost)
			require.NoError(t, err)

			assert.NotEqual(t, pw, hash)
			assert.False(t, strings.Contains(hash, pw))

			ok, err := ComparePassword(pw, hash)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = ComparePassword(pw+"-wrong", hash)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	h1, err := HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)
	h2, err := HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestHashPassword_UsesGivenCost(t *testing.T) {
	hash, err := HashPassword("secret1", bcrypt.MinCost+1)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword("", bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestHashPassword_InvalidCost(t *testing.T) {
	_, err := HashPassword("secret1", bcrypt.MaxCost+1)
	assert.Error(t, err)
}

func TestComparePassword_MalformedHash(t *testing.T) {
	ok, err := ComparePassword("secret1", "not-a-bcrypt-hash")
	assert.False(t, ok)
	assert.Error(t, err)
}
