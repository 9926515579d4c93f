package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gorica/clinic-api/internal/model"
	"github.com/gorica/clinic-api/internal/repository"
	"github.com/gorica/clinic-api/pkg/auth"
	apperrors "github.com/gorica/clinic-api/pkg/errors"
	"github.com/gorica/clinic-api/pkg/security"
)

const minUsernameLen = 3

const (
	msgInvalidCredentials = "Invalid username or password"
	msgInactiveAccount    = "Account is inactive. Please contact administrator."
)

type Service struct {
	users  repository.UserRepository
	jwtSvc auth.JWTService
	hasher security.PasswordHasher
	policy security.PasswordPolicy
	logger zerolog.Logger
}

func NewService(users repository.UserRepository, jwtSvc auth.JWTService, hasher security.PasswordHasher,
	policy security.PasswordPolicy, logger zerolog.Logger) *Service {
	return &Service{
		users:  users,
		jwtSvc: jwtSvc,
		hasher: hasher,
		policy: policy,
		logger: logger.With().Str("service", "auth").Logger(),
	}
}

// CreateUser validates and stores a new staff account. Unknown roles fall
// back to doctor.
func (s *Service) CreateUser(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.Validation("username, password, and name are required")
	}
	if len(username) < minUsernameLen {
		return nil, apperrors.Validation("Username must be at least 3 characters long")
	}
	if problems := s.policy.Validate(req.Password); len(problems) > 0 {
		return nil, apperrors.Validation("Password validation failed", problems...)
	}

	role := req.Role
	if !role.Valid() {
		role = model.RoleDoctor
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Name:         strings.TrimSpace(req.Name),
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, s.fail(err, "create user")
	}

	s.logger.Info().Str("user_id", user.ID.String()).Str("username", user.Username).Msg("user created")
	return user, nil
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	user, err := s.CreateUser(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.respond("User registered successfully", user)
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, apperrors.Validation("username and password are required")
	}

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized(msgInvalidCredentials)
		}
		return nil, s.fail(err, "login")
	}
	if !user.IsActive {
		return nil, apperrors.Unauthorized(msgInactiveAccount)
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		s.logger.Debug().Str("username", req.Username).Msg("password mismatch")
		return nil, apperrors.Unauthorized(msgInvalidCredentials)
	}
	return s.respond("Login successful", user)
}

// Authenticate resolves a bearer token to the active user it was issued for.
func (s *Service) Authenticate(ctx context.Context, token string) (*model.Principal, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid or expired token.")
	}
	return s.Principal(ctx, claims.UserID)
}

// Principal loads the user behind id and checks that the account is active.
func (s *Service) Principal(ctx context.Context, id uuid.UUID) (*model.Principal, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("User not found.")
		}
		return nil, s.fail(err, "load principal")
	}
	if !user.IsActive {
		return nil, apperrors.Unauthorized("User account is inactive.")
	}
	p := user.Principal()
	return &p, nil
}

func (s *Service) ChangePassword(ctx context.Context, req *model.ChangePasswordRequest) error {
	if problems := s.policy.Validate(req.NewPassword); len(problems) > 0 {
		return apperrors.Validation("Password validation failed", problems...)
	}
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		return s.fail(err, "change password")
	}
	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperrors.Internal(err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return s.fail(err, "change password")
	}
	s.logger.Info().Str("user_id", user.ID.String()).Msg("password changed")
	return nil
}

func (s *Service) respond(message string, user *model.User) (*model.AuthResponse, error) {
	token, err := s.jwtSvc.GenerateToken(user)
	if err != nil {
		return nil, s.fail(err, "generate token")
	}
	return &model.AuthResponse{Message: message, Token: token, User: user.Principal()}, nil
}

func (s *Service) fail(err error, op string) error {
	if appErr, ok := apperrors.As(err); ok {
		return appErr
	}
	s.logger.Error().Err(err).Str("op", op).Msg("auth operation failed")
	return apperrors.Internal(err)
}
