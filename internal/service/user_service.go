package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/catprepedge/catprep-backend/internal/model"
	"github.com/catprepedge/catprep-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

var (
	ErrInvalidRole  = errors.New("invalid role")
	ErrUserRequired = errors.New("user is required")
)

// UserService handles account business logic.
type UserService struct {
	userRepo    repository.UserStore
	authService *AuthService
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserStore, authService *AuthService) *UserService {
	return &UserService{userRepo: userRepo, authService: authService}
}

// Register creates an account with the given role.
func (s *UserService) Register(ctx context.Context, fullName, email, password string, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	hash, err := s.authService.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		FullName:     strings.TrimSpace(fullName),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Signup creates a free account.
func (s *UserService) Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error) {
	return s.Register(ctx, req.FullName, req.Email, req.Password, model.RoleFree)
}

// Authenticate checks email and password. Unknown emails and wrong passwords
// both return ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.authService.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// SetRole changes a user's role and returns the updated user.
func (s *UserService) SetRole(ctx context.Context, id uuid.UUID, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if err := s.userRepo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, id)
}

// UpgradeToPremium promotes a free account to premium. Premium and admin
// accounts are returned unchanged.
func (s *UserService) UpgradeToPremium(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != model.RoleFree {
		return user, nil
	}
	return s.SetRole(ctx, id, model.RolePremium)
}

// Profile maps a user to its public view.
func Profile(user *model.User) (model.UserProfile, error) {
	var p model.UserProfile
	if user == nil {
		return p, ErrUserRequired
	}
	if err := copier.Copy(&p, user); err != nil {
		return p, fmt.Errorf("map profile: %w", err)
	}
	return p, nil
}
