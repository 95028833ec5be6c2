package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestIssuerRoundTrip(t *testing.T) {
	i := NewIssuer("secret", time.Hour)

	token, err := i.Generate("u1", "ann@example.com", "ann")
	require.NoError(t, err)

	claims, err := i.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UID)
	assert.Equal(t, "ann@example.com", claims.Email)
	assert.Equal(t, "ann", claims.DisplayName)
}

func TestIssuerRejectsBadTokens(t *testing.T) {
	i := NewIssuer("secret", time.Hour)
	token, err := i.Generate("u1", "ann@example.com", "ann")
	require.NoError(t, err)

	_, err = NewIssuer("other", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = i.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewIssuer("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, err := expired.Generate("u1", "ann@example.com", "ann")
	require.NoError(t, err)
	_, err = i.Parse(old)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHash(t *testing.T) {
	BcryptCost = bcrypt.MinCost
	t.Cleanup(func() { BcryptCost = 14 })

	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("hunter22", hash))
	assert.False(t, CheckPasswordHash("hunter23", hash))
}
