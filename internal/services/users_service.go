package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vutran-dev/platform-ads/internal/models"
	"github.com/vutran-dev/platform-ads/internal/repository"
	"github.com/vutran-dev/platform-ads/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// UsersService covers the administrative user-management surface.
type UsersService interface {
	Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	List(ctx context.Context, current, pageSize int) ([]models.User, utils.PaginationMeta, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Update(ctx context.Context, req models.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type usersService struct {
	userRepo repository.UserRepository
	hashCost int
}

func NewUsersService(userRepo repository.UserRepository, hashCost int) UsersService {
	return &usersService{userRepo: userRepo, hashCost: hashCost}
}

// Create inserts an account directly, without the verification flow. The
// username and avatar derive from the email the same way signup derives
// them; a missing password is generated under the signup policy.
func (s *usersService) Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if _, err := s.userRepo.FindByPhone(ctx, req.PhoneNumber); err == nil {
		return nil, ErrPhoneTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up phone: %w", err)
	}

	password := req.Password
	if password == "" {
		generated, err := utils.GeneratePassword(utils.GeneratedPasswordLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate password: %w", err)
		}
		password = generated
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	username := req.Email
	if at := strings.Index(req.Email, "@"); at > 0 {
		username = req.Email[:at]
	}

	user := &models.User{
		Username:     username,
		Email:        req.Email,
		PasswordHash: string(hash),
		PhoneNumber:  req.PhoneNumber,
		Role:         models.RoleUser,
		AvatarURL:    fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=random&size=128", username),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user.Sanitized(), nil
}

func (s *usersService) List(ctx context.Context, current, pageSize int) ([]models.User, utils.PaginationMeta, error) {
	if current < 1 {
		current = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, utils.PaginationMeta{}, fmt.Errorf("failed to count users: %w", err)
	}
	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}

	skip := int64(current-1) * int64(pageSize)
	users, err := s.userRepo.List(ctx, skip, int64(pageSize))
	if err != nil {
		return nil, utils.PaginationMeta{}, fmt.Errorf("failed to list users: %w", err)
	}

	sanitized := make([]models.User, len(users))
	for i := range users {
		sanitized[i] = *users[i].Sanitized()
	}

	return sanitized, utils.PaginationMeta{
		CurrentPage: current,
		PageSize:    pageSize,
		TotalItems:  total,
		TotalPages:  totalPages,
	}, nil
}

func (s *usersService) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user.Sanitized(), nil
}

// Update patches only the fields the request carries. Unmentioned fields,
// including the role and activation state, are never touched here.
func (s *usersService) Update(ctx context.Context, req models.UpdateUserRequest) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(req.ID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	upd := repository.UserUpdate{AvatarURL: req.AvatarURL}
	if req.Email != nil && *req.Email != user.Email {
		if _, err := s.userRepo.FindByEmail(ctx, *req.Email); err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up email: %w", err)
		}
		upd.Email = req.Email
	}
	if req.PhoneNumber != nil && *req.PhoneNumber != user.PhoneNumber {
		if _, err := s.userRepo.FindByPhone(ctx, *req.PhoneNumber); err == nil {
			return nil, ErrPhoneTaken
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up phone: %w", err)
		}
		upd.PhoneNumber = req.PhoneNumber
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.hashCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		hashStr := string(hash)
		upd.PasswordHash = &hashStr
	}

	if !upd.Empty() {
		if err := s.userRepo.UpdateProfile(ctx, id, upd); err != nil {
			switch {
			case errors.Is(err, repository.ErrUserNotFound):
				return nil, ErrUserNotFound
			case errors.Is(err, repository.ErrDuplicateKey):
				return nil, ErrEmailTaken
			default:
				return nil, fmt.Errorf("failed to update user: %w", err)
			}
		}
	}

	updated, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}
	return updated.Sanitized(), nil
}

func (s *usersService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
