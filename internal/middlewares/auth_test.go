package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vutran-dev/platform-ads/internal/models"
	"github.com/vutran-dev/platform-ads/internal/repository"
	"github.com/vutran-dev/platform-ads/internal/services"
	"github.com/vutran-dev/platform-ads/internal/token"
	"github.com/vutran-dev/platform-ads/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	testAccessSecret  = "middleware-access-secret-0123"
	testRefreshSecret = "middleware-refresh-secret-0123"
)

// stubUserRepo serves a fixed set of users by email.
type stubUserRepo struct {
	users map[string]*models.User
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := s.users[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrUserNotFound
}

func (s *stubUserRepo) Create(context.Context, *models.User) error { return nil }
func (s *stubUserRepo) FindByID(context.Context, primitive.ObjectID) (*models.User, error) {
	return nil, repository.ErrUserNotFound
}
func (s *stubUserRepo) FindByEmailOrUsername(context.Context, string) (*models.User, error) {
	return nil, repository.ErrUserNotFound
}
func (s *stubUserRepo) FindByPhone(context.Context, string) (*models.User, error) {
	return nil, repository.ErrUserNotFound
}
func (s *stubUserRepo) FindByVerificationToken(context.Context, string) (*models.User, error) {
	return nil, repository.ErrUserNotFound
}
func (s *stubUserRepo) UpdateProfile(context.Context, primitive.ObjectID, repository.UserUpdate) error {
	return nil
}
func (s *stubUserRepo) Delete(context.Context, primitive.ObjectID) error { return nil }
func (s *stubUserRepo) Activate(context.Context, primitive.ObjectID) error    { return nil }
func (s *stubUserRepo) SetRefreshTokenHash(context.Context, primitive.ObjectID, string) error {
	return nil
}
func (s *stubUserRepo) RotateRefreshTokenHash(context.Context, primitive.ObjectID, string, string) error {
	return nil
}
func (s *stubUserRepo) ClearPlainPassword(context.Context, primitive.ObjectID) error { return nil }
func (s *stubUserRepo) SetLastLogin(context.Context, primitive.ObjectID, time.Time) error {
	return nil
}
func (s *stubUserRepo) SetLastLogout(context.Context, primitive.ObjectID, time.Time) error {
	return nil
}
func (s *stubUserRepo) SetVerificationEmailSent(context.Context, primitive.ObjectID, time.Time) error {
	return nil
}
func (s *stubUserRepo) List(context.Context, int64, int64) ([]models.User, error) { return nil, nil }
func (s *stubUserRepo) Count(context.Context) (int64, error)                      { return 0, nil }

// stubRefresher lets each test decide how a refresh attempt resolves.
type stubRefresher struct {
	fn    func(refresh string) (*models.TokenPair, *models.User, error)
	calls int
}

func (s *stubRefresher) RefreshTokens(_ context.Context, refresh string) (*models.TokenPair, *models.User, error) {
	s.calls++
	if s.fn == nil {
		return nil, nil, services.ErrInvalidRefreshToken
	}
	return s.fn(refresh)
}

func testUser(role models.Role) *models.User {
	return &models.User{
		ID:       primitive.NewObjectID(),
		Username: "boss",
		Email:    "boss@example.com",
		Role:     role,
		IsActive: true,
	}
}

func newTestApp(t *testing.T, repo *stubUserRepo, refresher *stubRefresher, roles ...models.Role) *fiber.App {
	t.Helper()
	issuer := token.NewIssuer(testAccessSecret, testRefreshSecret, 15, "7d")
	auth := NewAuthenticator(issuer, repo, refresher, utils.CookieConfig{
		AccessMaxAge:  900,
		RefreshMaxAge: 604800,
	}, zap.NewNop().Sugar())

	app := fiber.New()
	app.Get("/guarded", auth.RequireRoles(roles...), func(c *fiber.Ctx) error {
		user, ok := UserFromCtx(c)
		require.True(t, ok)
		return c.JSON(fiber.Map{"email": user.Email})
	})
	return app
}

// expiredAccessToken signs a token whose lifetime already ended.
func expiredAccessToken(t *testing.T, email string) string {
	t.Helper()
	claims := &token.Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   primitive.NewObjectID().Hex(),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-30 * time.Minute)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testAccessSecret))
	require.NoError(t, err)
	return signed
}

func guardedRequest(cookies map[string]string, bearer string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	for name, value := range cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	if bearer != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+bearer)
	}
	return req
}

func TestRequireRolesNoCredentials(t *testing.T) {
	app := newTestApp(t, &stubUserRepo{}, &stubRefresher{}, models.RoleUser)

	resp, err := app.Test(guardedRequest(nil, ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireRolesValidAccessCookie(t *testing.T) {
	user := testUser(models.RoleUser)
	repo := &stubUserRepo{users: map[string]*models.User{user.Email: user}}
	app := newTestApp(t, repo, &stubRefresher{}, models.RoleUser)

	issuer := token.NewIssuer(testAccessSecret, testRefreshSecret, 15, "7d")
	access, err := issuer.IssueAccess(user.ID.Hex(), user.Email)
	require.NoError(t, err)

	resp, err := app.Test(guardedRequest(map[string]string{utils.AccessTokenCookie: access}, ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRolesBearerFallback(t *testing.T) {
	user := testUser(models.RoleAdmin)
	repo := &stubUserRepo{users: map[string]*models.User{user.Email: user}}
	app := newTestApp(t, repo, &stubRefresher{}, models.RoleAdmin)

	issuer := token.NewIssuer(testAccessSecret, testRefreshSecret, 15, "7d")
	access, err := issuer.IssueAccess(user.ID.Hex(), user.Email)
	require.NoError(t, err)

	resp, err := app.Test(guardedRequest(nil, access))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRolesGarbageToken(t *testing.T) {
	refresher := &stubRefresher{}
	app := newTestApp(t, &stubUserRepo{}, refresher, models.RoleUser)

	resp, err := app.Test(guardedRequest(map[string]string{utils.AccessTokenCookie: "garbage"}, ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, refresher.calls, "a malformed token must not trigger a refresh")
}

func TestRequireRolesExpiredWithRefresh(t *testing.T) {
	user := testUser(models.RoleUser)
	issuer := token.NewIssuer(testAccessSecret, testRefreshSecret, 15, "7d")

	refresher := &stubRefresher{fn: func(refresh string) (*models.TokenPair, *models.User, error) {
		assert.Equal(t, "old-refresh", refresh)
		access, err := issuer.IssueAccess(user.ID.Hex(), user.Email)
		require.NoError(t, err)
		return &models.TokenPair{AccessToken: access, RefreshToken: "new-refresh"}, user, nil
	}}
	app := newTestApp(t, &stubUserRepo{}, refresher, models.RoleUser)

	resp, err := app.Test(guardedRequest(map[string]string{
		utils.AccessTokenCookie:  expiredAccessToken(t, user.Email),
		utils.RefreshTokenCookie: "old-refresh",
	}, ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, refresher.calls)

	rotated := map[string]string{}
	for _, c := range resp.Cookies() {
		rotated[c.Name] = c.Value
	}
	assert.NotEmpty(t, rotated[utils.AccessTokenCookie])
	assert.Equal(t, "new-refresh", rotated[utils.RefreshTokenCookie])
}

func TestRequireRolesExpiredWithoutRefresh(t *testing.T) {
	refresher := &stubRefresher{}
	app := newTestApp(t, &stubUserRepo{}, refresher, models.RoleUser)

	resp, err := app.Test(guardedRequest(map[string]string{
		utils.AccessTokenCookie: expiredAccessToken(t, "boss@example.com"),
	}, ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, refresher.calls)
}

func TestRequireRolesExpiredRefreshRejected(t *testing.T) {
	refresher := &stubRefresher{fn: func(string) (*models.TokenPair, *models.User, error) {
		return nil, nil, services.ErrInvalidRefreshToken
	}}
	app := newTestApp(t, &stubUserRepo{}, refresher, models.RoleUser)

	resp, err := app.Test(guardedRequest(map[string]string{
		utils.AccessTokenCookie:  expiredAccessToken(t, "boss@example.com"),
		utils.RefreshTokenCookie: "stale-refresh",
	}, ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 1, refresher.calls, "exactly one refresh attempt per request")
}

func TestRequireRolesRefreshOnlyCookie(t *testing.T) {
	user := testUser(models.RoleUser)
	issuer := token.NewIssuer(testAccessSecret, testRefreshSecret, 15, "7d")

	refresher := &stubRefresher{fn: func(string) (*models.TokenPair, *models.User, error) {
		access, err := issuer.IssueAccess(user.ID.Hex(), user.Email)
		require.NoError(t, err)
		return &models.TokenPair{AccessToken: access, RefreshToken: "new-refresh"}, user, nil
	}}
	app := newTestApp(t, &stubUserRepo{}, refresher, models.RoleUser)

	resp, err := app.Test(guardedRequest(map[string]string{
		utils.RefreshTokenCookie: "only-refresh",
	}, ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, refresher.calls)
}

func TestRequireRolesRoleMismatch(t *testing.T) {
	user := testUser(models.RoleUser)
	repo := &stubUserRepo{users: map[string]*models.User{user.Email: user}}
	app := newTestApp(t, repo, &stubRefresher{}, models.RoleAdmin)

	issuer := token.NewIssuer(testAccessSecret, testRefreshSecret, 15, "7d")
	access, err := issuer.IssueAccess(user.ID.Hex(), user.Email)
	require.NoError(t, err)

	resp, err := app.Test(guardedRequest(map[string]string{utils.AccessTokenCookie: access}, ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireRolesDeletedAccount(t *testing.T) {
	app := newTestApp(t, &stubUserRepo{}, &stubRefresher{}, models.RoleUser)

	issuer := token.NewIssuer(testAccessSecret, testRefreshSecret, 15, "7d")
	access, err := issuer.IssueAccess(primitive.NewObjectID().Hex(), "gone@example.com")
	require.NoError(t, err)

	resp, err := app.Test(guardedRequest(map[string]string{utils.AccessTokenCookie: access}, ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
