package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	codec := NewSessionCodec("secret", time.Hour, nil)
	token, err := codec.Encode(Session{ClientID: "c1", Name: "Nari"})
	require.NoError(t, err)

	s := codec.Decode(token)
	assert.Equal(t, Session{ClientID: "c1", Name: "Nari"}, s)
	assert.True(t, s.LoggedIn())
}

func TestSessionDecodeFailuresMeanNoSession(t *testing.T) {
	clock := newFakeClock()
	codec := NewSessionCodec("secret", time.Hour, clock.Now)
	token, err := codec.Encode(Session{ClientID: "c1", Name: "Nari"})
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"empty":   "",
		"garbage": "not-a-token",
	} {
		s := codec.Decode(tok)
		assert.False(t, s.LoggedIn(), name)
		assert.NotEmpty(t, s.ClientID, name)
	}

	other := NewSessionCodec("other", time.Hour, clock.Now)
	assert.NotEqual(t, "c1", other.Decode(token).ClientID)

	clock.Advance(2 * time.Hour)
	s := codec.Decode(token)
	assert.False(t, s.LoggedIn())
	assert.NotEqual(t, "c1", s.ClientID)
}

func TestSessionLoggedOutKeepsClientID(t *testing.T) {
	codec := NewSessionCodec("secret", 0, nil)
	token, err := codec.Encode(Session{ClientID: "c1"})
	require.NoError(t, err)
	s := codec.Decode(token)
	assert.Equal(t, "c1", s.ClientID)
	assert.False(t, s.LoggedIn())
}

func TestNormalizeName(t *testing.T) {
	name, err := NormalizeName("  Nari ")
	require.NoError(t, err)
	assert.Equal(t, "Nari", name)

	_, err = NormalizeName("   ")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestGreeting(t *testing.T) {
	assert.Equal(t, "Signed in as admin 🛡️", Greeting("admin", "admin"))
	assert.Equal(t, "Nice to see you, Nari! 🌟", Greeting("Nari", "admin"))
}
