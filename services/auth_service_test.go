package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/agora/pkg"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	auth := NewAuthService("test-secret")

	token, err := auth.GenerateAccessToken("u1", "alice", time.Minute)
	require.NoError(t, err)

	claims, err := auth.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestValidateAccessTokenRejections(t *testing.T) {
	auth := NewAuthService("test-secret")

	// Yanlış secret ile imzalanmış token
	other := NewAuthService("other-secret")
	token, err := other.GenerateAccessToken("u1", "alice", time.Minute)
	require.NoError(t, err)
	_, err = auth.ValidateAccessToken(token)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	// Süresi geçmiş token
	expired, err := auth.GenerateAccessToken("u1", "alice", -time.Minute)
	require.NoError(t, err)
	_, err = auth.ValidateAccessToken(expired)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	// Token bile değil
	_, err = auth.ValidateAccessToken("garbage")
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}
