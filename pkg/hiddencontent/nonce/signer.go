package nonce

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const tokenLength = 20

// Signer generates and validates HMAC-signed action tokens
type Signer struct {
	secretKey []byte
	lifetime  time.Duration
	now       func() time.Time
}

// New creates a new Signer with the given options
func New(opts ...Option) *Signer {
	s := &Signer{
		lifetime: 24 * time.Hour,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Issue returns a token for action and userID valid from now
func (s *Signer) Issue(action string, userID int64) string {
	return s.sign(s.tick(), action, userID)
}

// Verify reports whether token is valid for action and userID
func (s *Signer) Verify(token, action string, userID int64) bool {
	_, err := s.Check(token, action, userID)
	return err == nil
}

// Check validates token and returns its age in ticks: 1 when issued in the
// current tick, 2 when issued in the previous one
func (s *Signer) Check(token, action string, userID int64) (int, error) {
	if len(s.secretKey) == 0 {
		return 0, ErrNoSecretKey
	}
	if token == "" {
		return 0, ErrMissingToken
	}

	tick := s.tick()
	for age := 1; age <= 2; age++ {
		expected := s.sign(tick-int64(age-1), action, userID)
		// Compare signatures using constant-time comparison to prevent timing attacks
		if hmac.Equal([]byte(token), []byte(expected)) {
			return age, nil
		}
	}
	return 0, ErrInvalidToken
}

// IsEnabled returns true if a secret key is set
func (s *Signer) IsEnabled() bool {
	return len(s.secretKey) > 0
}

// tick returns the index of the current half-lifetime window
func (s *Signer) tick() int64 {
	half := int64(s.lifetime / 2)
	if half <= 0 {
		half = int64(time.Hour)
	}
	now := s.now().UnixNano()
	return (now + half - 1) / half
}

// sign generates the truncated HMAC-SHA256 token for a tick
func (s *Signer) sign(tick int64, action string, userID int64) string {
	h := hmac.New(sha256.New, s.secretKey)
	fmt.Fprintf(h, "%d|%s|%d", tick, action, userID)
	return hex.EncodeToString(h.Sum(nil))[:tokenLength]
}
