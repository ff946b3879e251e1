package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/npdi-tracker/internal/auth"
	"github.com/spec-kit/npdi-tracker/internal/domain"
	"github.com/spec-kit/npdi-tracker/internal/repository"
	apperrors "github.com/spec-kit/npdi-tracker/pkg/util"
)

// UserService manages the admin-maintained user directory and login.
type UserService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, tokens *auth.TokenManager, bcryptCost int, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, tokens: tokens, bcryptCost: bcryptCost, logger: logger}
}

// NewUserInput is the admin create payload.
type NewUserInput struct {
	EmployeeID  string
	Email       string
	DisplayName string
	Password    string
	Role        domain.Role
}

// LoginResult carries the issued token alongside the user record.
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      domain.User `json:"user"`
}

// Login verifies credentials and issues a JWT. Bad email and bad password
// return the same error so the endpoint leaks nothing about which was wrong.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsCode(err, "NOT_FOUND") {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if !user.Active || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(auth.Identity{
		StableID:    user.EmployeeID,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("user logged in", zap.String("employeeId", user.EmployeeID))
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: *user}, nil
}

// Create adds a directory entry.
func (s *UserService) Create(ctx context.Context, input NewUserInput) (*domain.User, error) {
	input.EmployeeID = strings.TrimSpace(input.EmployeeID)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.DisplayName = strings.TrimSpace(input.DisplayName)

	details := map[string]any{}
	if input.EmployeeID == "" {
		details["employeeId"] = "required"
	}
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		details["email"] = "valid email required"
	}
	if input.DisplayName == "" {
		details["displayName"] = "required"
	}
	if len(input.Password) < 8 {
		details["password"] = "at least 8 characters"
	}
	if !input.Role.Valid() {
		details["role"] = "unknown role"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid user payload", details)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		EmployeeID:   input.EmployeeID,
		Email:        input.Email,
		DisplayName:  input.DisplayName,
		PasswordHash: hash,
		Role:         input.Role,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// List returns every directory entry.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// Get returns one directory entry.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Deactivate disables a user. Existing tokens keep working until expiry;
// the login endpoint is the enforcement point.
func (s *UserService) Deactivate(ctx context.Context, id string) error {
	if err := s.users.SetActive(ctx, id, false); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}
