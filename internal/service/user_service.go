package service

import (
	"context"
	"errors"
	"fmt"

	"tarl-insight-hub/internal/model"
	"tarl-insight-hub/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEmailExists = errors.New("email already exists")
	ErrSelfDelete  = errors.New("cannot delete your own account")
)

// UserService manages the accounts roles are assigned to
type UserService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest, creatorID string) (*model.User, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, req *UpdateUserRequest, updaterID string) (*model.User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID, deleterID string) error
	GetAllUsers(ctx context.Context) ([]model.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role" validate:"required,role"`
}

type UpdateUserRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6"` // Optional
	FullName string  `json:"full_name" validate:"required"`
	Role     string  `json:"role" validate:"required,role"`
	IsActive *bool   `json:"is_active"`
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) CreateUser(ctx context.Context, req *CreateUserRequest, creatorID string) (*model.User, error) {
	// 1. Validate request
	if err := validate(req); err != nil {
		return nil, err
	}
	role, _ := model.ParseRole(req.Role)

	// 2. Check if email already exists
	if err := s.ensureEmailFree(ctx, req.Email); err != nil {
		return nil, err
	}

	// 3. Create user
	user := &model.User{
		Email:        req.Email,
		FullName:     req.FullName,
		Role:         role,
		IsActive:     true,
		TokenVersion: uuid.New().String(),
	}
	user.CreatedBy = creatorID
	user.UpdatedBy = creatorID

	// 4. Set password
	if err := user.SetPassword(req.Password); err != nil {
		return nil, internalError("hash password", err)
	}

	// 5. Save to database
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, writeError("create user", err)
	}
	return user, nil
}

// UpdateUser replaces the account fields. A role change or deactivation
// takes effect on the user's next request since sessions reload the user.
func (s *userService) UpdateUser(ctx context.Context, userID uuid.UUID, req *UpdateUserRequest, updaterID string) (*model.User, error) {
	// 1. Validate request
	if err := validate(req); err != nil {
		return nil, err
	}
	role, _ := model.ParseRole(req.Role)

	// 2. Find existing user
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 3. Check if email is being changed and already exists
	if req.Email != user.Email {
		if err := s.ensureEmailFree(ctx, req.Email); err != nil {
			return nil, err
		}
	}

	// 4. Update user fields
	user.Email = req.Email
	user.FullName = req.FullName
	user.Role = role
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedBy = updaterID

	// 5. Update password if provided, ending open sessions
	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, internalError("hash password", err)
		}
		user.TokenVersion = uuid.New().String()
	}

	// 6. Save to database
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, writeError("update user", err)
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, userID uuid.UUID, deleterID string) error {
	if userID.String() == deleterID {
		return fmt.Errorf("%w: %w", ErrForbidden, ErrSelfDelete)
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("user %s", userID)
		}
		return internalError("delete user", err)
	}
	return nil
}

func (s *userService) GetAllUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, internalError("load users", err)
	}
	return users, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user %s", id)
		}
		return nil, internalError("load user", err)
	}
	return user, nil
}

func (s *userService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %w", ErrConflict, ErrEmailExists)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return internalError("check email", err)
	}
}

// writeError maps a unique violation that slipped past ensureEmailFree,
// e.g. a concurrent create, to a conflict.
func writeError(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %w", ErrConflict, ErrEmailExists)
	}
	return internalError(op, err)
}
