package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "test-access-secret-0123456789abcdef"
	testRefreshSecret = "test-refresh-secret-0123456789abcdef"
)

func newTestIssuer() *Issuer {
	return NewIssuer(testAccessSecret, testRefreshSecret, 15, "7d")
}

func TestIssueAndVerifyAccess(t *testing.T) {
	issuer := newTestIssuer()

	tok, err := issuer.IssueAccess("user-1", "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := issuer.VerifyAccess(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestIssueAndVerifyRefresh(t *testing.T) {
	issuer := newTestIssuer()

	tok, err := issuer.IssueRefresh("user-2", "bob@example.com")
	require.NoError(t, err)

	claims, err := issuer.VerifyRefresh(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-2", claims.Subject)
	assert.Equal(t, "bob@example.com", claims.Email)
}

func TestTokenClassesAreIndependent(t *testing.T) {
	issuer := newTestIssuer()

	access, err := issuer.IssueAccess("user-1", "alice@example.com")
	require.NoError(t, err)
	refresh, err := issuer.IssueRefresh("user-1", "alice@example.com")
	require.NoError(t, err)

	_, err = issuer.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = issuer.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyMalformed(t *testing.T) {
	issuer := newTestIssuer()

	_, err := issuer.VerifyAccess("not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := newTestIssuer()
	other := NewIssuer("completely-different-secret-value", testRefreshSecret, 15, "7d")

	tok, err := other.IssueAccess("user-1", "alice@example.com")
	require.NoError(t, err)

	_, err = issuer.VerifyAccess(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyExpired(t *testing.T) {
	issuer := newTestIssuer()

	// Sign an already-expired token with the correct access secret.
	claims := &Claims{
		Email: "alice@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testAccessSecret))
	require.NoError(t, err)

	_, err = issuer.VerifyAccess(expired)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrTokenInvalid)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"30s", 30 * time.Second},
		{"15m", 15 * time.Minute},
		{"12h", 12 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"90", 90 * time.Second},
		{"5x", 5 * time.Second}, // unrecognized unit multiplies by one
		{"", 0},
		{"abc", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDuration(tt.in))
		})
	}
}
