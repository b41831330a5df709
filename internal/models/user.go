package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the authorization level of an account.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is an account document. A pending account carries a non-nil
// VerificationToken and VerificationExpiration until it is activated or
// deleted; PasswordPlain holds the generated password only until the first
// email carrying it has been dispatched.
type User struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username         string             `bson:"username" json:"username"`
	Email            string             `bson:"email" json:"email"`
	PasswordHash     string             `bson:"password_hash" json:"-"`
	PasswordPlain    *string            `bson:"password_plain,omitempty" json:"-"`
	PhoneNumber      string             `bson:"phone_number" json:"phoneNumber"`
	Role             Role               `bson:"role" json:"role"`
	IsActive         bool               `bson:"is_active" json:"isActive"`
	Points           int                `bson:"points" json:"points"`
	AvatarURL        string             `bson:"avatar_url" json:"avatarUrl"`
	RefreshTokenHash string             `bson:"refresh_token_hash,omitempty" json:"-"`

	VerificationToken         *string    `bson:"verification_token,omitempty" json:"-"`
	VerificationExpiration    *time.Time `bson:"verification_expiration,omitempty" json:"-"`
	LastVerificationEmailSent *time.Time `bson:"last_verification_email_sent,omitempty" json:"-"`

	LastLoginAt  *time.Time `bson:"last_login_at,omitempty" json:"lastLoginAt,omitempty"`
	LastLogoutAt *time.Time `bson:"last_logout_at,omitempty" json:"lastLogoutAt,omitempty"`
	CreatedAt    time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `bson:"updated_at" json:"updatedAt"`
}

// Pending reports whether the account still awaits email verification.
func (u *User) Pending() bool {
	return !u.IsActive && u.VerificationToken != nil
}

// Sanitized returns a copy with secret fields stripped, safe to attach to a
// request context or return in a response body.
func (u *User) Sanitized() *User {
	c := *u
	c.PasswordHash = ""
	c.PasswordPlain = nil
	c.RefreshTokenHash = ""
	c.VerificationToken = nil
	c.VerificationExpiration = nil
	return &c
}
