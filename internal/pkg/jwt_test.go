package pkg

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123"

func TestTokenRoundTrip(t *testing.T) {
	m, err := NewTokenManager(testSecret, time.Hour)
	require.NoError(t, err)

	tok, exp, err := m.Generate("bot-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "bot-1", claims.ClientID)
	assert.NotEmpty(t, claims.ID)

	other, _, err := m.Generate("bot-1")
	require.NoError(t, err)
	assert.NotEqual(t, tok, other)
}

func TestTokenExpired(t *testing.T) {
	m, err := NewTokenManager(testSecret, time.Minute)
	require.NoError(t, err)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, _, err := m.Generate("bot-1")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenWrongSecret(t *testing.T) {
	a, err := NewTokenManager(testSecret, 0)
	require.NoError(t, err)
	b, err := NewTokenManager(strings.Repeat("x", 20), 0)
	require.NoError(t, err)

	tok, _, err := a.Generate("bot-1")
	require.NoError(t, err)
	_, err = b.Parse(tok)
	assert.ErrorIs(t, err, ErrTokenParseFailure)

	_, err = a.Parse("not-a-token")
	assert.Error(t, err)
}

func TestEmptySecret(t *testing.T) {
	_, err := NewTokenManager("", time.Hour)
	assert.ErrorIs(t, err, ErrEmptySecret)
}
