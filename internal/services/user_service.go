package services

import (
	"context"
	"errors"
	"strings"

	"land-backend/internal/auth"
	"land-backend/internal/cache"
	"land-backend/internal/models"
	"land-backend/internal/repositories"

	"github.com/google/uuid"
)

// ErrInvalidCredentials is returned for any failed login
var ErrInvalidCredentials = errors.New("invalid email or password")

type UserService struct {
	Repo       *repositories.UserRepository
	JWTManager *auth.JWTManager
}

func NewUserService(repo *repositories.UserRepository, jwtManager *auth.JWTManager) *UserService {
	return &UserService{
		Repo:       repo,
		JWTManager: jwtManager,
	}
}

// CreateUser adds a directory entry. Only administrators may do this.
func (s *UserService) CreateUser(ctx context.Context, req *models.CreateUserRequest, actor models.Actor) (*models.User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := requireAdministrator(actor); err != nil {
		return nil, err
	}

	if existing, err := s.Repo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, validationError("user with this email already exists")
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hashedPassword,
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.Repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFoundError("user %s not found", id)
		}
		return nil, err
	}
	return u, nil
}

// ListUsers returns all users
func (s *UserService) ListUsers(ctx context.Context, actor models.Actor) ([]*models.User, error) {
	if err := requireAdministrator(actor); err != nil {
		return nil, err
	}
	return s.Repo.List(ctx)
}

// ToggleActive suspends or reactivates a user. Administrators cannot
// suspend themselves.
func (s *UserService) ToggleActive(ctx context.Context, id uuid.UUID, actor models.Actor) (*models.User, error) {
	if err := requireAdministrator(actor); err != nil {
		return nil, err
	}
	if id == actor.UserID {
		return nil, validationError("you cannot change your own active status")
	}

	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	u.IsActive = !u.IsActive
	if err := s.Repo.ToggleActiveStatus(ctx, id, u.IsActive); err != nil {
		return nil, err
	}
	cache.InvalidateUserName(ctx, id)
	return u, nil
}

// Login authenticates a user and returns a JWT token
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, validationError("email and password are required")
	}

	user, err := s.Repo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, permissionDenied("account is suspended")
	}

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Token: token,
		User:  user,
	}, nil
}

func requireAdministrator(actor models.Actor) error {
	if !actor.IsActive || actor.Role != models.RoleAdministrator {
		return permissionDenied("administrator role required")
	}
	return nil
}
