package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/vutran-dev/platform-ads/internal/middlewares"
	"github.com/vutran-dev/platform-ads/internal/models"
	"github.com/vutran-dev/platform-ads/internal/services"
	"github.com/vutran-dev/platform-ads/internal/utils"
	"go.uber.org/zap"
)

type AuthHandler struct {
	svc     services.AuthService
	cookies utils.CookieConfig
	logger  *zap.SugaredLogger
}

func NewAuthHandler(svc services.AuthService, cookies utils.CookieConfig, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{svc: svc, cookies: cookies, logger: logger}
}

func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req models.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", errs)
	}

	result, err := h.svc.SignUp(c.Context(), req.Email, req.PhoneNumber, req.Role, req.AdminKey)
	if err != nil {
		var throttled *services.ThrottleError
		if errors.As(err, &throttled) {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(throttled.RetryAfter))
			return utils.ErrorResponse(c, fiber.StatusTooManyRequests, throttled.Error(), nil)
		}
		return err
	}

	if result.Resent {
		return utils.SuccessResponse(c, fiber.StatusOK, "Verification email resent", nil)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, "User registered successfully", result.User)
}

func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req models.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", errs)
	}

	user, err := h.svc.ValidateCredentials(c.Context(), req.EmailOrUsername, req.Password)
	if err != nil {
		return err
	}
	pair, err := h.svc.SignIn(c.Context(), user)
	if err != nil {
		return err
	}

	// Tokens travel only in http-only cookies, never in the body.
	utils.SetAuthCookies(c, pair, h.cookies)
	return utils.SuccessResponse(c, fiber.StatusOK, "Sign in successful", user.Sanitized())
}

func (h *AuthHandler) LogOut(c *fiber.Ctx) error {
	user, ok := middlewares.UserFromCtx(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	if err := h.svc.LogOut(c.Context(), user.ID); err != nil {
		return err
	}
	utils.ClearAuthCookies(c, h.cookies)
	return utils.SuccessResponse(c, fiber.StatusOK, "Logged out", nil)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	refresh := c.Cookies(utils.RefreshTokenCookie)
	if refresh == "" {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := c.BodyParser(&body); err == nil {
			refresh = body.RefreshToken
		}
	}
	if refresh == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "refresh token not found")
	}

	pair, user, err := h.svc.RefreshTokens(c.Context(), refresh)
	if err != nil {
		return err
	}

	utils.SetAuthCookies(c, pair, h.cookies)
	return utils.SuccessResponse(c, fiber.StatusOK, "Tokens refreshed", user.Sanitized())
}

func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	verifyToken := c.Query("token")
	if verifyToken == "" {
		return fiber.NewError(fiber.StatusBadRequest, "token query parameter required")
	}

	user, err := h.svc.VerifyEmail(c.Context(), verifyToken)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Email verified, account activated", user)
}
