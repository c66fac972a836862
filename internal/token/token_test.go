package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Minute)

	raw, err := m.Issue("user-42")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	subject, err := m.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-42", subject)
}

func TestManager_Expired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	raw, err := m.Issue("user-42")
	require.NoError(t, err)

	_, err = m.Parse(raw)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestManager_Invalid(t *testing.T) {
	m := NewManager("test-secret", time.Minute)

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewManager("other-secret", time.Minute)
		raw, err := other.Issue("user-42")
		require.NoError(t, err)

		_, err = m.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalid)
	})
}

func TestManager_DefaultTTL(t *testing.T) {
	m := NewManager("test-secret", 0)
	assert.Equal(t, DefaultTTL, m.ttl)
}
