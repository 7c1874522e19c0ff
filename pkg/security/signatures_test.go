package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParse(t *testing.T) {
	signer := NewTokenSigner("test-secret", "cairn")

	token, expiresAt, err := signer.Sign("sess-1", "0x1A2B...C3D4", "Scientist", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Second)

	claims, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.ID)
	assert.Equal(t, "0x1A2B...C3D4", claims.Wallet)
	assert.Equal(t, "Scientist", claims.Role)
}

func TestParseRejectsForeignAndExpiredTokens(t *testing.T) {
	signer := NewTokenSigner("test-secret", "cairn")
	other := NewTokenSigner("other-secret", "cairn")

	token, _, err := other.Sign("sess-1", "0xabc...123", "Funder", time.Hour)
	require.NoError(t, err)
	_, err = signer.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, _, err := signer.Sign("sess-2", "0xabc...123", "Funder", -time.Minute)
	require.NoError(t, err)
	_, err = signer.Parse(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
