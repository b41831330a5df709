package verification

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Manager issues single-use, time-boxed email-verification tokens and
// enforces the minimum interval between consecutive verification emails.
type Manager struct {
	baseURL        string
	tokenTTL       time.Duration
	resendInterval time.Duration
	now            func() time.Time
}

func NewManager(baseURL string, ttlMinutes, resendSeconds int) *Manager {
	return &Manager{
		baseURL:        baseURL,
		tokenTTL:       time.Duration(ttlMinutes) * time.Minute,
		resendInterval: time.Duration(resendSeconds) * time.Second,
		now:            time.Now,
	}
}

// Generate returns a fresh token and its expiration timestamp.
func (m *Manager) Generate() (string, time.Time) {
	return uuid.NewString(), m.now().Add(m.tokenTTL)
}

// Expired reports whether the given expiration has elapsed.
func (m *Manager) Expired(expiration time.Time) bool {
	return m.now().After(expiration)
}

// ResendWait returns the seconds remaining before another verification
// email may be sent, given the time of the last send. Zero means a resend
// is allowed now.
func (m *Manager) ResendWait(lastSent *time.Time) int {
	if lastSent == nil {
		return 0
	}
	elapsed := m.now().Sub(*lastSent)
	if elapsed >= m.resendInterval {
		return 0
	}
	remaining := m.resendInterval - elapsed
	secs := int(remaining / time.Second)
	if remaining%time.Second > 0 {
		secs++
	}
	return secs
}

// Link builds the verification URL embedded in the email.
func (m *Manager) Link(token string) string {
	return fmt.Sprintf("%s/auth/verify-email?token=%s", m.baseURL, url.QueryEscape(token))
}
