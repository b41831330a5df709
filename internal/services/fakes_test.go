package services

import (
	"context"
	"sync"
	"time"

	"github.com/vutran-dev/platform-ads/internal/mailer"
	"github.com/vutran-dev/platform-ads/internal/models"
	"github.com/vutran-dev/platform-ads/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memUserRepo is an in-memory UserRepository that enforces the same unique
// constraints on email and phone number as the Mongo indexes do.
type memUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[primitive.ObjectID]models.User)}
}

func (r *memUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email || existing.PhoneNumber == u.PhoneNumber {
			return repository.ErrDuplicateKey
		}
	}
	u.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID] = *u
	return nil
}

func (r *memUserRepo) find(match func(models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			c := u
			return &c, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *memUserRepo) FindByEmailOrUsername(_ context.Context, v string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == v || u.Username == v })
}

func (r *memUserRepo) FindByPhone(_ context.Context, phone string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.PhoneNumber == phone })
}

func (r *memUserRepo) FindByVerificationToken(_ context.Context, token string) (*models.User, error) {
	return r.find(func(u models.User) bool {
		return u.VerificationToken != nil && *u.VerificationToken == token
	})
}

func (r *memUserRepo) mutate(id primitive.ObjectID, apply func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	apply(&u)
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *memUserRepo) UpdateProfile(_ context.Context, id primitive.ObjectID, upd repository.UserUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	for _, other := range r.users {
		if other.ID == id {
			continue
		}
		if upd.Email != nil && other.Email == *upd.Email {
			return repository.ErrDuplicateKey
		}
		if upd.PhoneNumber != nil && other.PhoneNumber == *upd.PhoneNumber {
			return repository.ErrDuplicateKey
		}
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.PhoneNumber != nil {
		u.PhoneNumber = *upd.PhoneNumber
	}
	if upd.AvatarURL != nil {
		u.AvatarURL = *upd.AvatarURL
	}
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) Activate(_ context.Context, id primitive.ObjectID) error {
	return r.mutate(id, func(u *models.User) {
		u.IsActive = true
		u.VerificationToken = nil
		u.VerificationExpiration = nil
	})
}

func (r *memUserRepo) SetRefreshTokenHash(_ context.Context, id primitive.ObjectID, hash string) error {
	return r.mutate(id, func(u *models.User) { u.RefreshTokenHash = hash })
}

func (r *memUserRepo) RotateRefreshTokenHash(_ context.Context, id primitive.ObjectID, oldHash, newHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.RefreshTokenHash != oldHash {
		return repository.ErrRefreshHashMismatch
	}
	u.RefreshTokenHash = newHash
	r.users[id] = u
	return nil
}

func (r *memUserRepo) ClearPlainPassword(_ context.Context, id primitive.ObjectID) error {
	return r.mutate(id, func(u *models.User) { u.PasswordPlain = nil })
}

func (r *memUserRepo) SetLastLogin(_ context.Context, id primitive.ObjectID, at time.Time) error {
	return r.mutate(id, func(u *models.User) { u.LastLoginAt = &at })
}

func (r *memUserRepo) SetLastLogout(_ context.Context, id primitive.ObjectID, at time.Time) error {
	return r.mutate(id, func(u *models.User) { u.LastLogoutAt = &at })
}

func (r *memUserRepo) SetVerificationEmailSent(_ context.Context, id primitive.ObjectID, at time.Time) error {
	return r.mutate(id, func(u *models.User) { u.LastVerificationEmailSent = &at })
}

func (r *memUserRepo) List(_ context.Context, skip, limit int64) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u)
	}
	if skip >= int64(len(all)) {
		return nil, nil
	}
	all = all[skip:]
	if limit < int64(len(all)) {
		all = all[:limit]
	}
	return all, nil
}

func (r *memUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

// fakeMailer records dispatched messages synchronously so tests can assert
// on them without sleeping.
type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) SendAsync(msg mailer.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
}

func (m *fakeMailer) messages() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]mailer.Message, len(m.sent))
	copy(out, m.sent)
	return out
}
