package service

import (
	"context"
	"strings"

	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles registration, login and profile maintenance.
type UserService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(store *store.Store) *UserService {
	return &UserService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// UpdateProfileRequest is the payload for editing profile fields.
type UpdateProfileRequest struct {
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	Phone  string `json:"phone,omitempty"`
}

// ChangePasswordRequest is the payload for rotating a password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

// Register creates a new account. Emails are unique case-insensitively, and
// the very first registrant is seeded as the admin.
func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, internalErr("failed to hash password", err)
	}

	var user *models.User
	err = s.store.WithLock(func() error {
		users, err := s.store.Users(ctx)
		if err != nil {
			return internalErr("failed to load users", err)
		}

		for i := range users {
			if strings.EqualFold(users[i].Email, email) {
				return conflictErr("an account with this email already exists")
			}
		}

		role := models.RoleCustomer
		if len(users) == 0 {
			role = models.RoleAdmin
		}

		now := util.Now()
		user = &models.User{
			ID:           util.NewID(),
			Name:         strings.TrimSpace(req.Name),
			Email:        email,
			PasswordHash: string(hash),
			Role:         role,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := s.store.SaveUsers(ctx, append(users, *user)); err != nil {
			return internalErr("failed to save users", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	util.UsersRegisteredTotal.Inc()
	s.logger.Info("User registered",
		zap.String("user_id", user.ID),
		zap.String("role", user.Role))
	return user, nil
}

// Login verifies credentials and returns the matching account.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	users, err := s.store.Users(ctx)
	if err != nil {
		return nil, internalErr("failed to load users", err)
	}

	email = strings.ToLower(strings.TrimSpace(email))
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			if bcrypt.CompareHashAndPassword([]byte(users[i].PasswordHash), []byte(password)) != nil {
				break
			}
			return &users[i], nil
		}
	}

	return nil, unauthorizedErr("invalid email or password")
}

// GetByID returns the account with the given id.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	users, err := s.store.Users(ctx)
	if err != nil {
		return nil, internalErr("failed to load users", err)
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, notFoundErr("user not found")
}

// UpdateProfile applies non-empty profile fields to the account.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*models.User, error) {
	var updated *models.User
	err := s.store.WithLock(func() error {
		users, err := s.store.Users(ctx)
		if err != nil {
			return internalErr("failed to load users", err)
		}

		for i := range users {
			if users[i].ID != userID {
				continue
			}
			if req.Name != "" {
				users[i].Name = strings.TrimSpace(req.Name)
			}
			if req.Avatar != "" {
				users[i].Avatar = req.Avatar
			}
			if req.Phone != "" {
				users[i].Phone = req.Phone
			}
			users[i].UpdatedAt = util.Now()
			updated = &users[i]
			return s.store.SaveUsers(ctx, users)
		}
		return notFoundErr("user not found")
	})
	if err != nil {
		if _, ok := err.(*Error); ok {
			return nil, err
		}
		return nil, internalErr("failed to save users", err)
	}
	return updated, nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *UserService) ChangePassword(ctx context.Context, userID string, req *ChangePasswordRequest) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return internalErr("failed to hash password", err)
	}

	err = s.store.WithLock(func() error {
		users, err := s.store.Users(ctx)
		if err != nil {
			return internalErr("failed to load users", err)
		}

		for i := range users {
			if users[i].ID != userID {
				continue
			}
			if bcrypt.CompareHashAndPassword([]byte(users[i].PasswordHash), []byte(req.CurrentPassword)) != nil {
				return unauthorizedErr("current password is incorrect")
			}
			users[i].PasswordHash = string(hash)
			users[i].UpdatedAt = util.Now()
			return s.store.SaveUsers(ctx, users)
		}
		return notFoundErr("user not found")
	})
	if err != nil {
		if _, ok := err.(*Error); ok {
			return err
		}
		return internalErr("failed to save users", err)
	}
	return nil
}
