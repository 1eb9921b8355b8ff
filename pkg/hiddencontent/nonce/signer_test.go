package nonce_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/hidden-content/pkg/hiddencontent/nonce"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newSigner(clock *fakeClock) *nonce.Signer {
	return nonce.New(
		nonce.WithSecretKey("test-secret-key-with-enough-bytes!!"),
		nonce.WithLifetime(24*time.Hour),
		nonce.WithClock(clock.Now),
	)
}

func TestSigner_IssueVerify(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)}
	s := newSigner(clock)

	token := s.Issue("save", 7)
	assert.Len(t, token, 20)
	assert.True(t, s.Verify(token, "save", 7))

	t.Run("wrong action", func(t *testing.T) {
		assert.False(t, s.Verify(token, "delete", 7))
	})

	t.Run("wrong user", func(t *testing.T) {
		assert.False(t, s.Verify(token, "save", 8))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := s.Check("", "save", 7)
		assert.ErrorIs(t, err, nonce.ErrMissingToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.Check("not-a-token", "save", 7)
		assert.ErrorIs(t, err, nonce.ErrInvalidToken)
	})
}

func TestSigner_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)}
	s := newSigner(clock)
	token := s.Issue("save", 1)

	age, err := s.Check(token, "save", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, age)

	// one tick later the token is still accepted as age 2
	clock.t = clock.t.Add(12 * time.Hour)
	age, err = s.Check(token, "save", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, age)

	// two ticks later it has expired
	clock.t = clock.t.Add(12 * time.Hour)
	_, err = s.Check(token, "save", 1)
	assert.ErrorIs(t, err, nonce.ErrInvalidToken)
}

func TestSigner_NoSecret(t *testing.T) {
	s := nonce.New()
	assert.False(t, s.IsEnabled())

	_, err := s.Check(s.Issue("save", 1), "save", 1)
	assert.ErrorIs(t, err, nonce.ErrNoSecretKey)
}

func TestSigner_DifferentSecrets(t *testing.T) {
	a := nonce.New(nonce.WithSecretKey("secret-a"))
	b := nonce.New(nonce.WithSecretKey("secret-b"))

	assert.False(t, b.Verify(a.Issue("save", 1), "save", 1))
}
