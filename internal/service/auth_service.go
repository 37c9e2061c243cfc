package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/devinfinitee/AI-health-companion/internal/domain"
	"github.com/devinfinitee/AI-health-companion/internal/platform/auth"
	"github.com/devinfinitee/AI-health-companion/internal/repo/postgres"
	"github.com/devinfinitee/AI-health-companion/pkg/logger"
)

type AuthService interface {
	Signup(ctx context.Context, req *domain.SignupRequest) (*domain.AuthResponse, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error)
}

type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

type authService struct {
	users  postgres.UsersRepo
	tokens TokenIssuer
}

func NewAuthService(users postgres.UsersRepo, tokens TokenIssuer) AuthService {
	return &authService{users: users, tokens: tokens}
}

func (s *authService) Signup(ctx context.Context, req *domain.SignupRequest) (*domain.AuthResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, domain.Internal("Failed to create account", fmt.Errorf("hash password: %w", err))
	}

	user, err := s.users.Create(ctx, req.Email, hash, req.Name)
	if errors.Is(err, domain.ErrDuplicateEmail) {
		return nil, domain.Conflict(domain.CodeEmailExists, "An account with this email already exists")
	}
	if err != nil {
		return nil, domain.Internal("Failed to create account", fmt.Errorf("create user: %w", err))
	}

	logger.InfoContext(ctx, "User signed up", "user_id", user.ID)
	return s.respond(user)
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Auth(domain.CodeInvalidCredentials, "Invalid email or password")
	}
	if err != nil {
		return nil, domain.Internal("Login failed", fmt.Errorf("find user: %w", err))
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		logger.WarnContext(ctx, "Login with wrong password", "user_id", user.ID)
		return nil, domain.Auth(domain.CodeInvalidCredentials, "Invalid email or password")
	}

	return s.respond(user)
}

func (s *authService) respond(user *domain.User) (*domain.AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, domain.Internal("Failed to issue token", fmt.Errorf("sign token: %w", err))
	}
	return &domain.AuthResponse{User: user.ToUserInfo(), Token: token}, nil
}
