package service

import (
	"context"
	"errors"
	"fmt"

	"tarl-insight-hub/internal/model"
	"tarl-insight-hub/internal/repository"
	"tarl-insight-hub/pkg/jwt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrSessionReplaced    = errors.New("session expired (logged in on another device)")
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	// Authenticate resolves a session token to the caller's identity.
	// Every failure wraps ErrUnauthorized unless storage itself failed.
	Authenticate(ctx context.Context, token string) (*model.Identity, error)
	ResetPassword(ctx context.Context, email, newPassword string) error
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token    string         `json:"token"`
	Identity model.Identity `json:"user"`
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	if err := validate(&LoginRequest{Email: email, Password: password}); err != nil {
		return nil, err
	}

	// 1. Find user by email
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrUnauthorized, ErrInvalidCredentials)
		}
		return nil, internalError("load user", err)
	}

	// 2. Check if user is active
	if !user.IsActive {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, ErrUserInactive)
	}

	// 3. Verify password
	if !user.CheckPassword(password) {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, ErrInvalidCredentials)
	}

	// 4. Single session: a new token version invalidates older tokens
	version := uuid.New().String()
	if err := s.userRepo.UpdateTokenVersion(ctx, user.ID, version); err != nil {
		return nil, internalError("update session", err)
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Role.String(), version)
	if err != nil {
		return nil, internalError("sign session token", err)
	}

	return &LoginResponse{
		Token:    token,
		Identity: identityOf(user),
	}, nil
}

func (s *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.UpdateTokenVersion(ctx, userID, uuid.New().String()); err != nil {
		return internalError("rotate session", err)
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.Identity, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrUnauthorized)
		}
		return nil, internalError("load user", err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, ErrUserInactive)
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, ErrSessionReplaced)
	}
	role, err := model.ParseRole(user.Role.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	user.Role = role

	identity := identityOf(user)
	return &identity, nil
}

// ResetPassword sets a new password and ends every open session of the user
func (s *authService) ResetPassword(ctx context.Context, email, newPassword string) error {
	if len(newPassword) < 6 {
		return newValidationError("password", "must be at least 6 characters")
	}
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("user %s", email)
		}
		return internalError("load user", err)
	}
	if err := user.SetPassword(newPassword); err != nil {
		return internalError("hash password", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		return internalError("update password", err)
	}
	return s.Logout(ctx, user.ID)
}

func identityOf(u *model.User) model.Identity {
	return model.Identity{
		UserID:   u.ID.String(),
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
	}
}
