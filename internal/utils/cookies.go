package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/vutran-dev/platform-ads/internal/models"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// CookieConfig controls how the auth cookies are written.
type CookieConfig struct {
	AccessMaxAge  int // seconds
	RefreshMaxAge int // seconds
	Secure        bool
}

// SetAuthCookies writes both token cookies, http-only and same-site
// restricted.
func SetAuthCookies(c *fiber.Ctx, pair *models.TokenPair, cfg CookieConfig) {
	c.Cookie(&fiber.Cookie{
		Name:     AccessTokenCookie,
		Value:    pair.AccessToken,
		MaxAge:   cfg.AccessMaxAge,
		HTTPOnly: true,
		Secure:   cfg.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Cookie(&fiber.Cookie{
		Name:     RefreshTokenCookie,
		Value:    pair.RefreshToken,
		MaxAge:   cfg.RefreshMaxAge,
		HTTPOnly: true,
		Secure:   cfg.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearAuthCookies expires both token cookies.
func ClearAuthCookies(c *fiber.Ctx, cfg CookieConfig) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Expires:  time.Now().Add(-time.Hour),
			HTTPOnly: true,
			Secure:   cfg.Secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
}
