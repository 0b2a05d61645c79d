package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := &TokenIssuer{Secret: []byte("test-secret"), TTL: time.Hour}

	raw, err := issuer.Mint("user-1", "a@example.com")
	require.NoError(t, err)

	userID, email, err := issuer.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "a@example.com", email)
}

func TestTokenExpired(t *testing.T) {
	issuer := &TokenIssuer{Secret: []byte("test-secret"), TTL: -time.Minute}

	raw, err := issuer.Mint("user-1", "a@example.com")
	require.NoError(t, err)

	_, _, err = issuer.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := &TokenIssuer{Secret: []byte("test-secret"), TTL: time.Hour}
	other := &TokenIssuer{Secret: []byte("other-secret"), TTL: time.Hour}

	raw, err := issuer.Mint("user-1", "a@example.com")
	require.NoError(t, err)

	_, _, err = other.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGarbage(t *testing.T) {
	issuer := &TokenIssuer{Secret: []byte("test-secret"), TTL: time.Hour}

	_, _, err := issuer.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
