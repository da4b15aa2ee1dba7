package tokens

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestNew_RejectsBadConfig(t *testing.T) {
	_, err := New("short", "influencerhub", time.Hour)
	assert.ErrorIs(t, err, ErrShortKey)

	_, err = New(testKey, "influencerhub", 0)
	assert.Error(t, err)
}

func TestIssueAndParse(t *testing.T) {
	s, err := New(testKey, "influencerhub", time.Hour)
	require.NoError(t, err)

	raw, exp, err := s.Issue("op-1", "a@example.com", "Ada")
	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(raw, ".")))
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := s.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "op-1", claims.Subject)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, "Ada", claims.Name)
	assert.NotEmpty(t, claims.ID)
}

func TestParse_Rejects(t *testing.T) {
	s, err := New(testKey, "influencerhub", time.Hour)
	require.NoError(t, err)
	raw, _, err := s.Issue("op-1", "a@example.com", "")
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		_, err := s.Parse("")
		assert.ErrorIs(t, err, ErrEmptyToken)
	})

	t.Run("tampered", func(t *testing.T) {
		_, err := s.Parse(raw + "x")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other key", func(t *testing.T) {
		other, err := New(strings.Repeat("z", 32), "influencerhub", time.Hour)
		require.NoError(t, err)
		_, err = other.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other issuer", func(t *testing.T) {
		other, err := New(testKey, "someone-else", time.Hour)
		require.NoError(t, err)
		_, err = other.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later, err := New(testKey, "influencerhub", time.Hour)
		require.NoError(t, err)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err = later.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "op-1",
				Issuer:    "influencerhub",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		signed, err := tok.SignedString([]byte(testKey))
		require.NoError(t, err)
		_, err = s.Parse(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
