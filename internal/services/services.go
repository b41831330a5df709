package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/vutran-dev/platform-ads/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrEmailTaken          = errors.New("email is already taken")
	ErrPhoneTaken          = errors.New("phone number is already taken")
	ErrAlreadyRegistered   = errors.New("account already registered")
	ErrInvalidCredentials  = errors.New("invalid email/username or password")
	ErrNotActivated        = errors.New("account has not been activated, please check your email to verify your account")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrResendThrottled     = errors.New("verification email recently sent")
	ErrForbidden           = errors.New("forbidden")
	ErrUserNotFound        = errors.New("user not found")
	ErrVerificationInvalid = errors.New("invalid verification token")
	ErrVerificationExpired = errors.New("verification token has expired, please register again")
	ErrAlreadyActivated    = errors.New("account is already activated")
	ErrInternal            = errors.New("internal server error")
)

// ThrottleError carries the seconds remaining before a verification email
// may be resent. errors.Is(err, ErrResendThrottled) matches it.
type ThrottleError struct {
	RetryAfter int
}

func (e *ThrottleError) Error() string {
	return fmt.Sprintf("verification email recently sent, retry in %d seconds", e.RetryAfter)
}

func (e *ThrottleError) Unwrap() error { return ErrResendThrottled }

// SignUpResult distinguishes a fresh registration from a verification
// resend against an existing pending account.
type SignUpResult struct {
	User   *models.User
	Resent bool
}

// AuthService implements the signup, signin, logout, token-refresh and
// email-verification business rules.
type AuthService interface {
	SignUp(ctx context.Context, email, phoneNumber string, role models.Role, adminKey string) (*SignUpResult, error)
	ValidateCredentials(ctx context.Context, emailOrUsername, password string) (*models.User, error)
	SignIn(ctx context.Context, user *models.User) (*models.TokenPair, error)
	LogOut(ctx context.Context, userID primitive.ObjectID) error
	RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, *models.User, error)
	VerifyEmail(ctx context.Context, token string) (*models.User, error)
}

// TokenRefresher is the narrow surface the request authenticator depends
// on; it avoids pulling the whole auth service into the middleware layer.
type TokenRefresher interface {
	RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, *models.User, error)
}
