package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fitsair-platform/service-groupdesk/internal/domain/shared"
	"github.com/fitsair-platform/service-groupdesk/internal/domain/user"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/auth"
)

// LoginRequest holds console credentials.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the access token and the caller's profile.
type LoginResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// CreateUserRequest holds the data needed to create a console user.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// UserDTO is the response representation of a user. The password hash never
// leaves the service.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserService is the application service for authentication and user
// administration.
type UserService struct {
	repo       user.Repository
	jwtManager *auth.JWTManager
	logger     *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(repo user.Repository, jwtManager *auth.JWTManager, logger *zap.Logger) *UserService {
	return &UserService{repo: repo, jwtManager: jwtManager, logger: logger}
}

// Login verifies credentials and issues an access token. Invalid username,
// wrong password and disabled accounts all fail identically.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		if shared.IsKind(err, shared.KindNotFound) {
			return nil, shared.NewUnauthorizedError("invalid credentials")
		}
		return nil, err
	}
	if !u.Enabled() || !u.CheckPassword(req.Password) {
		return nil, shared.NewUnauthorizedError("invalid credentials")
	}

	token, err := s.jwtManager.Generate(u.ID(), u.Username(), string(u.Role()))
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in",
		zap.String("username", u.Username()),
		zap.String("role", string(u.Role())),
	)

	return &LoginResponse{Token: token, User: toUserDTO(u)}, nil
}

// Create registers a new console user.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserDTO, error) {
	if existing, err := s.repo.FindByUsername(ctx, req.Username); err == nil && existing != nil {
		return nil, shared.NewValidationError("username is already taken")
	} else if err != nil && !shared.IsKind(err, shared.KindNotFound) {
		return nil, err
	}

	u, err := user.New(req.Username, req.Password, user.Role(req.Role))
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}

	result := toUserDTO(u)
	return &result, nil
}

// List retrieves users, optionally filtered by role.
func (s *UserService) List(ctx context.Context, role string) ([]UserDTO, error) {
	if role != "" && !user.Role(role).IsValid() {
		return nil, shared.NewValidationError("invalid role: " + role)
	}

	users, err := s.repo.List(ctx, user.Role(role))
	if err != nil {
		return nil, err
	}

	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	return dtos, nil
}

// RouteControllers retrieves the enabled route controllers available for
// assignment.
func (s *UserService) RouteControllers(ctx context.Context) ([]UserDTO, error) {
	users, err := s.repo.List(ctx, user.RoleRouteController)
	if err != nil {
		return nil, err
	}

	dtos := make([]UserDTO, 0, len(users))
	for _, u := range users {
		if u.Enabled() {
			dtos = append(dtos, toUserDTO(u))
		}
	}
	return dtos, nil
}

// SetEnabled enables or disables an account.
func (s *UserService) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) (*UserDTO, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	u.SetEnabled(enabled)
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	result := toUserDTO(u)
	return &result, nil
}

// ResetPassword replaces an account's password.
func (s *UserService) ResetPassword(ctx context.Context, id uuid.UUID, password string) error {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := u.ResetPassword(password); err != nil {
		return err
	}
	return s.repo.Update(ctx, u)
}

// --- Helpers ---

func toUserDTO(u *user.User) UserDTO {
	return UserDTO{
		ID:        u.ID(),
		Username:  u.Username(),
		Role:      string(u.Role()),
		Enabled:   u.Enabled(),
		CreatedAt: u.CreatedAt(),
		UpdatedAt: u.UpdatedAt(),
	}
}
