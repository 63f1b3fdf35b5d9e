package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("secret", 60)

	token, err := m.GenerateToken("admin", "관리자", 10)
	require.NoError(t, err)

	claims, err := m.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.UserID)
	assert.Equal(t, "관리자", claims.Nickname)
	assert.Equal(t, 10, claims.Level)
}

func TestManager_WrongSecret(t *testing.T) {
	token, err := NewManager("secret", 60).GenerateToken("admin", "", 10)
	require.NoError(t, err)

	_, err = NewManager("other", 60).VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_Expired(t *testing.T) {
	m := NewManager("secret", 60)
	m.expiresIn = -time.Minute
	token, err := m.GenerateToken("admin", "", 10)
	require.NoError(t, err)

	_, err = m.VerifyToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestManager_Garbage(t *testing.T) {
	_, err := NewManager("secret", 0).VerifyToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
