package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vutran-dev/platform-ads/internal/events"
	"github.com/vutran-dev/platform-ads/internal/mailer"
	"github.com/vutran-dev/platform-ads/internal/metrics"
	"github.com/vutran-dev/platform-ads/internal/models"
	"github.com/vutran-dev/platform-ads/internal/repository"
	"github.com/vutran-dev/platform-ads/internal/token"
	"github.com/vutran-dev/platform-ads/internal/utils"
	"github.com/vutran-dev/platform-ads/internal/verification"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthConfig is the slice of configuration the auth service needs.
type AuthConfig struct {
	AdminRegistrationKey string
	PasswordHashCost     int
	AdminDefaultPoints   int
}

type authService struct {
	userRepo  repository.UserRepository
	issuer    *token.Issuer
	verifier  *verification.Manager
	mail      mailer.Dispatcher
	publisher *events.Publisher
	cfg       AuthConfig
	logger    *zap.SugaredLogger
	now       func() time.Time
}

func NewAuthService(
	userRepo repository.UserRepository,
	issuer *token.Issuer,
	verifier *verification.Manager,
	mail mailer.Dispatcher,
	publisher *events.Publisher,
	cfg AuthConfig,
	logger *zap.SugaredLogger,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		issuer:    issuer,
		verifier:  verifier,
		mail:      mail,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// hashToken stores a deterministic digest of the refresh token so rotation
// can be an atomic compare-and-swap against the stored value.
func hashToken(tok string) string {
	sum := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(sum[:])
}

func (s *authService) SignUp(ctx context.Context, email, phoneNumber string, role models.Role, adminKey string) (*SignUpResult, error) {
	if role == "" {
		role = models.RoleUser
	}
	if role == models.RoleAdmin && adminKey != s.cfg.AdminRegistrationKey {
		metrics.SignUps.WithLabelValues("forbidden").Inc()
		return nil, ErrForbidden
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if existing != nil {
		if existing.Pending() {
			return s.resendVerification(ctx, existing)
		}
		metrics.SignUps.WithLabelValues("conflict").Inc()
		return nil, ErrAlreadyRegistered
	}

	// Advisory pre-check only; the unique index is the real guarantee.
	phoneOwner, err := s.userRepo.FindByPhone(ctx, phoneNumber)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up phone: %w", err)
	}
	if phoneOwner != nil {
		if phoneOwner.IsActive {
			metrics.SignUps.WithLabelValues("conflict").Inc()
			return nil, ErrPhoneTaken
		}
		// A stale pending account holds the phone number; delete it so the
		// number can be registered again.
		if err := s.userRepo.Delete(ctx, phoneOwner.ID); err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to free phone number: %w", err)
		}
	}

	password, err := utils.GeneratePassword(utils.GeneratedPasswordLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.PasswordHashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	username := email
	if at := strings.Index(email, "@"); at > 0 {
		username = email[:at]
	}

	now := s.now().UTC()
	user := &models.User{
		Username:      username,
		Email:         email,
		PasswordHash:  string(hash),
		PasswordPlain: &password,
		PhoneNumber:   phoneNumber,
		Role:          role,
		IsActive:      role == models.RoleAdmin,
		AvatarURL:     fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=random&size=128", username),
	}

	if role == models.RoleAdmin {
		user.Points = s.cfg.AdminDefaultPoints
	} else {
		verifyToken, expiration := s.verifier.Generate()
		user.VerificationToken = &verifyToken
		user.VerificationExpiration = &expiration
		user.LastVerificationEmailSent = &now
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			// Lost the insert race; the store-level constraint wins.
			metrics.SignUps.WithLabelValues("conflict").Inc()
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if role == models.RoleAdmin {
		s.mail.SendAsync(mailer.Message{
			To:       user.Email,
			Subject:  "Welcome to Platform Ads",
			Template: "welcome",
			Context: map[string]interface{}{
				"name":     user.Username,
				"email":    user.Email,
				"password": password,
			},
		})
	} else {
		s.mail.SendAsync(mailer.Message{
			To:       user.Email,
			Subject:  "Verify your Platform Ads account",
			Template: "verify-email",
			Context: map[string]interface{}{
				"name":            user.Username,
				"password":        password,
				"verificationUrl": s.verifier.Link(*user.VerificationToken),
			},
		})
	}

	// The dispatch call above already holds its own copy of the password,
	// so the transient field can be cleared as soon as it is issued.
	if err := s.userRepo.ClearPlainPassword(ctx, user.ID); err != nil {
		s.logger.Warnw("failed to clear transient password", "user", user.ID.Hex(), "error", err)
	}

	s.publisher.Publish(events.AuthEvent{
		Type:   "user.registered",
		UserID: user.ID.Hex(),
		Email:  user.Email,
		Role:   string(user.Role),
	})
	metrics.SignUps.WithLabelValues("created").Inc()

	return &SignUpResult{User: user.Sanitized()}, nil
}

// resendVerification handles a signup against an existing pending account:
// reuse the stored token, repeat the email, and throttle repeats.
func (s *authService) resendVerification(ctx context.Context, user *models.User) (*SignUpResult, error) {
	if wait := s.verifier.ResendWait(user.LastVerificationEmailSent); wait > 0 {
		metrics.SignUps.WithLabelValues("throttled").Inc()
		return nil, &ThrottleError{RetryAfter: wait}
	}

	mailCtx := map[string]interface{}{
		"name":            user.Username,
		"verificationUrl": s.verifier.Link(*user.VerificationToken),
	}
	if user.PasswordPlain != nil {
		mailCtx["password"] = *user.PasswordPlain
	}
	s.mail.SendAsync(mailer.Message{
		To:       user.Email,
		Subject:  "Verify your Platform Ads account",
		Template: "verify-email",
		Context:  mailCtx,
	})

	now := s.now().UTC()
	if err := s.userRepo.SetVerificationEmailSent(ctx, user.ID, now); err != nil {
		s.logger.Warnw("failed to record verification resend", "user", user.ID.Hex(), "error", err)
	}
	metrics.SignUps.WithLabelValues("resent").Inc()

	return &SignUpResult{User: user.Sanitized(), Resent: true}, nil
}

func (s *authService) ValidateCredentials(ctx context.Context, emailOrUsername, password string) (*models.User, error) {
	user, err := s.userRepo.FindByEmailOrUsername(ctx, emailOrUsername)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.SignIns.WithLabelValues("invalid").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.SignIns.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		metrics.SignIns.WithLabelValues("not_activated").Inc()
		return nil, ErrNotActivated
	}

	return user, nil
}

func (s *authService) SignIn(ctx context.Context, user *models.User) (*models.TokenPair, error) {
	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.SetRefreshTokenHash(ctx, user.ID, hashToken(pair.RefreshToken)); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token hash: %w", err)
	}

	now := s.now().UTC()
	if err := s.userRepo.SetLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warnw("failed to record last login", "user", user.ID.Hex(), "error", err)
	}

	s.publisher.Publish(events.AuthEvent{
		Type:   "user.login",
		UserID: user.ID.Hex(),
		Email:  user.Email,
		Role:   string(user.Role),
	})
	metrics.SignIns.WithLabelValues("ok").Inc()

	return pair, nil
}

func (s *authService) LogOut(ctx context.Context, userID primitive.ObjectID) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	now := s.now().UTC()
	if err := s.userRepo.SetLastLogout(ctx, user.ID, now); err != nil {
		return fmt.Errorf("failed to record last logout: %w", err)
	}
	if err := s.userRepo.SetRefreshTokenHash(ctx, user.ID, ""); err != nil {
		return fmt.Errorf("failed to clear refresh token hash: %w", err)
	}
	return nil
}

func (s *authService) RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, *models.User, error) {
	// Every verification failure collapses to one error kind so callers
	// cannot probe whether a token was expired, malformed or forged.
	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues("invalid").Inc()
		return nil, nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.TokenRefreshes.WithLabelValues("invalid").Inc()
			return nil, nil, ErrInvalidRefreshToken
		}
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user.RefreshTokenHash == "" {
		metrics.TokenRefreshes.WithLabelValues("invalid").Inc()
		return nil, nil, ErrInvalidRefreshToken
	}

	presented := hashToken(refreshToken)
	if presented != user.RefreshTokenHash {
		metrics.TokenRefreshes.WithLabelValues("invalid").Inc()
		return nil, nil, ErrInvalidRefreshToken
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}

	// Rotation: swapping the stored hash invalidates the token just
	// consumed. The CAS rejects the loser of two concurrent refreshes.
	if err := s.userRepo.RotateRefreshTokenHash(ctx, user.ID, presented, hashToken(pair.RefreshToken)); err != nil {
		metrics.TokenRefreshes.WithLabelValues("invalid").Inc()
		return nil, nil, ErrInvalidRefreshToken
	}
	metrics.TokenRefreshes.WithLabelValues("ok").Inc()

	return pair, user, nil
}

func (s *authService) VerifyEmail(ctx context.Context, verifyToken string) (*models.User, error) {
	user, err := s.userRepo.FindByVerificationToken(ctx, verifyToken)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.EmailVerifications.WithLabelValues("not_found").Inc()
			return nil, ErrVerificationInvalid
		}
		return nil, fmt.Errorf("failed to look up verification token: %w", err)
	}

	if user.VerificationExpiration != nil && s.verifier.Expired(*user.VerificationExpiration) {
		// The pending registration is dead; remove it so the email and
		// phone number can be registered again.
		if err := s.userRepo.Delete(ctx, user.ID); err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Warnw("failed to delete expired pending account", "user", user.ID.Hex(), "error", err)
		}
		metrics.EmailVerifications.WithLabelValues("expired").Inc()
		return nil, ErrVerificationExpired
	}

	if user.IsActive {
		metrics.EmailVerifications.WithLabelValues("already_active").Inc()
		return nil, ErrAlreadyActivated
	}

	if err := s.userRepo.Activate(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to activate account: %w", err)
	}
	user.IsActive = true

	mailCtx := map[string]interface{}{
		"name":  user.Username,
		"email": user.Email,
	}
	if user.PasswordPlain != nil {
		mailCtx["password"] = *user.PasswordPlain
	}
	s.mail.SendAsync(mailer.Message{
		To:       user.Email,
		Subject:  "Welcome to Platform Ads",
		Template: "welcome",
		Context:  mailCtx,
	})
	if err := s.userRepo.ClearPlainPassword(ctx, user.ID); err != nil {
		s.logger.Warnw("failed to clear transient password", "user", user.ID.Hex(), "error", err)
	}

	s.publisher.Publish(events.AuthEvent{
		Type:   "user.activated",
		UserID: user.ID.Hex(),
		Email:  user.Email,
		Role:   string(user.Role),
	})
	metrics.EmailVerifications.WithLabelValues("ok").Inc()

	return user.Sanitized(), nil
}

func (s *authService) issuePair(user *models.User) (*models.TokenPair, error) {
	access, err := s.issuer.IssueAccess(user.ID.Hex(), user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refresh, err := s.issuer.IssueRefresh(user.ID.Hex(), user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
