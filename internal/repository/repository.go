package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vutran-dev/platform-ads/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrUserNotFound is returned when no document matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateKey is returned when an insert violates the unique email
	// or phone index.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrRefreshHashMismatch is returned when a compare-and-swap rotation
	// loses against a concurrent write.
	ErrRefreshHashMismatch = errors.New("stored refresh token hash mismatch")
)

// UserUpdate is a partial profile update. Nil fields are left untouched so
// a patch never clobbers columns it did not mention.
type UserUpdate struct {
	Email        *string
	PasswordHash *string
	PhoneNumber  *string
	AvatarURL    *string
}

func (u UserUpdate) Empty() bool {
	return u.Email == nil && u.PasswordHash == nil && u.PhoneNumber == nil && u.AvatarURL == nil
}

// UserRepository is the persistent credential store. Uniqueness of email
// and phone number is enforced by the store itself; pre-checks in callers
// are advisory only.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByEmailOrUsername(ctx context.Context, emailOrUsername string) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	FindByVerificationToken(ctx context.Context, token string) (*models.User, error)
	// UpdateProfile applies the non-nil fields of upd as a targeted $set.
	UpdateProfile(ctx context.Context, id primitive.ObjectID, upd UserUpdate) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Activate sets is_active and removes the verification fields in one
	// write, consuming the single-use token.
	Activate(ctx context.Context, id primitive.ObjectID) error
	// SetRefreshTokenHash overwrites the stored hash; an empty hash clears it.
	SetRefreshTokenHash(ctx context.Context, id primitive.ObjectID, hash string) error
	// RotateRefreshTokenHash replaces oldHash with newHash only if oldHash
	// is still the stored value, making rotation atomic.
	RotateRefreshTokenHash(ctx context.Context, id primitive.ObjectID, oldHash, newHash string) error
	ClearPlainPassword(ctx context.Context, id primitive.ObjectID) error
	SetLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
	SetLastLogout(ctx context.Context, id primitive.ObjectID, at time.Time) error
	SetVerificationEmailSent(ctx context.Context, id primitive.ObjectID, at time.Time) error

	List(ctx context.Context, skip, limit int64) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
}

// VideoRepository is the catalog store.
type VideoRepository interface {
	Create(ctx context.Context, v *models.Video) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error)
	List(ctx context.Context, skip, limit int64) ([]models.Video, error)
	Count(ctx context.Context) (int64, error)
}
