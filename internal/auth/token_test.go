package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_SignVerifyRoundtrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, err := tm.Sign(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, ok := tm.Verify(token)
	assert.True(t, ok)
	assert.Equal(t, int64(42), userID)
}

func TestTokenManager_VerifyGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	for _, input := range []string{
		"",
		"not-a-token",
		"aaaa.bbbb.cccc",
		"eyJhbGciOiJIUzI1NiJ9.e30.",
	} {
		userID, ok := tm.Verify(input)
		assert.False(t, ok, "input %q must not verify", input)
		assert.Zero(t, userID)
	}
}

func TestTokenManager_VerifyWrongKey(t *testing.T) {
	issuer := NewTokenManager("key-one", time.Hour)
	verifier := NewTokenManager("key-two", time.Hour)

	token, err := issuer.Sign(7)
	require.NoError(t, err)

	_, ok := verifier.Verify(token)
	assert.False(t, ok)
}

func TestTokenManager_VerifyTampered(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, err := tm.Sign(7)
	require.NoError(t, err)

	tampered := []byte(token)
	tampered[len(tampered)/2] ^= 0x01

	_, ok := tm.Verify(string(tampered))
	assert.False(t, ok)
}

func TestTokenManager_VerifyExpired(t *testing.T) {
	tm := &TokenManager{secret: []byte("test-secret"), ttl: -time.Minute}

	token, err := tm.Sign(7)
	require.NoError(t, err)

	_, ok := tm.Verify(token)
	assert.False(t, ok, "expired token must map to the same invalid outcome")
}
