package middlewares

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/vutran-dev/platform-ads/internal/models"
	"github.com/vutran-dev/platform-ads/internal/repository"
	"github.com/vutran-dev/platform-ads/internal/services"
	"github.com/vutran-dev/platform-ads/internal/token"
	"github.com/vutran-dev/platform-ads/internal/utils"
	"go.uber.org/zap"
)

const userLocalsKey = "auth_user"

// Authenticator guards role-gated routes. It verifies the access token on
// every request and, when the token has merely expired, transparently
// exchanges the refresh token for a new pair and resets the cookies before
// the request proceeds.
type Authenticator struct {
	issuer    *token.Issuer
	userRepo  repository.UserRepository
	refresher services.TokenRefresher
	cookies   utils.CookieConfig
	logger    *zap.SugaredLogger
}

func NewAuthenticator(
	issuer *token.Issuer,
	userRepo repository.UserRepository,
	refresher services.TokenRefresher,
	cookies utils.CookieConfig,
	logger *zap.SugaredLogger,
) *Authenticator {
	return &Authenticator{
		issuer:    issuer,
		userRepo:  userRepo,
		refresher: refresher,
		cookies:   cookies,
		logger:    logger,
	}
}

// RequireRoles authenticates the request and checks the identity's role
// against the declared set. Routes without any required role do not attach
// this middleware at all and stay public.
func (a *Authenticator) RequireRoles(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := a.authenticate(c)
		if err != nil {
			return err
		}

		if len(roles) > 0 {
			allowed := false
			for _, r := range roles {
				if user.Role == r {
					allowed = true
					break
				}
			}
			if !allowed {
				return fiber.NewError(fiber.StatusForbidden, "insufficient role")
			}
		}

		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

func (a *Authenticator) authenticate(c *fiber.Ctx) (*models.User, error) {
	access := c.Cookies(utils.AccessTokenCookie)
	if access == "" {
		if auth := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
			access = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	refresh := c.Cookies(utils.RefreshTokenCookie)

	if access == "" && refresh == "" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "credentials not found")
	}

	// Access token already gone but a refresh token remains: exchange it
	// up front instead of failing verification first.
	if access == "" {
		return a.refreshAndAttach(c, refresh)
	}

	claims, err := a.issuer.VerifyAccess(access)
	switch {
	case err == nil:
		user, lookupErr := a.userRepo.FindByEmail(c.Context(), claims.Email)
		if lookupErr != nil {
			if errors.Is(lookupErr, repository.ErrUserNotFound) {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "account no longer exists")
			}
			a.logger.Errorw("identity lookup failed", "error", lookupErr)
			return nil, fiber.ErrInternalServerError
		}
		return user.Sanitized(), nil

	case errors.Is(err, token.ErrTokenExpired):
		if refresh == "" {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "access token expired, no refresh token available")
		}
		return a.refreshAndAttach(c, refresh)

	default:
		return nil, fiber.NewError(fiber.StatusUnauthorized, "invalid access token")
	}
}

// refreshAndAttach performs one refresh attempt, resets both cookies and
// verifies the new access token before letting the request continue.
func (a *Authenticator) refreshAndAttach(c *fiber.Ctx, refresh string) (*models.User, error) {
	pair, user, err := a.refresher.RefreshTokens(c.Context(), refresh)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "session expired, please sign in again")
	}

	utils.SetAuthCookies(c, pair, a.cookies)

	if _, err := a.issuer.VerifyAccess(pair.AccessToken); err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "session expired, please sign in again")
	}

	return user.Sanitized(), nil
}

// UserFromCtx returns the identity attached by RequireRoles.
func UserFromCtx(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(userLocalsKey).(*models.User)
	return user, ok
}
