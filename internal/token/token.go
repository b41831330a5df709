package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired means the token was well formed and correctly signed
	// but its expiry has passed; the caller may attempt a refresh.
	ErrTokenExpired = errors.New("token: expired")
	// ErrTokenInvalid covers every other verification failure and is
	// terminal for the presented token.
	ErrTokenInvalid = errors.New("token: invalid")
)

// Claims is the payload carried by both token classes.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies the two token classes, each with its own secret
// and expiration policy.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewIssuer(accessSecret, refreshSecret string, accessTTLMinutes int, refreshTTL string) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     time.Duration(accessTTLMinutes) * time.Minute,
		refreshTTL:    ParseDuration(refreshTTL),
	}
}

// IssueAccess signs {sub, email} with the access secret and the short TTL.
func (i *Issuer) IssueAccess(subjectID, email string) (string, error) {
	return sign(subjectID, email, i.accessSecret, i.accessTTL)
}

// IssueRefresh signs the same payload with the refresh secret and long TTL.
func (i *Issuer) IssueRefresh(subjectID, email string) (string, error) {
	return sign(subjectID, email, i.refreshSecret, i.refreshTTL)
}

// VerifyAccess verifies a token against the access secret.
func (i *Issuer) VerifyAccess(tokenString string) (*Claims, error) {
	return verify(tokenString, i.accessSecret)
}

// VerifyRefresh verifies a token against the refresh secret.
func (i *Issuer) VerifyRefresh(tokenString string) (*Claims, error) {
	return verify(tokenString, i.refreshSecret)
}

func sign(subjectID, email string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			// jti keeps tokens unique even when two are issued for the
			// same subject within the same second.
			ID: uuid.NewString(),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func verify(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !tok.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ParseDuration converts a "<int><unit>" duration string into a duration.
// Recognized units are s, m, h and d; an unrecognized unit multiplies the
// integer by one second.
func ParseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	num := s
	unit := byte(0)
	last := s[len(s)-1]
	if last < '0' || last > '9' {
		num = s[:len(s)-1]
		unit = last
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0
	}
	mult := 1
	switch unit {
	case 's':
		mult = 1
	case 'm':
		mult = 60
	case 'h':
		mult = 60 * 60
	case 'd':
		mult = 24 * 60 * 60
	}
	return time.Duration(n*mult) * time.Second
}
