package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/actuallystonmai/internship-recommender/internal/auth"
	"github.com/actuallystonmai/internship-recommender/internal/domain"
	"go.uber.org/zap"
)

type UserStore interface {
	GetUserByID(ctx context.Context, userID int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	CreateUser(ctx context.Context, u domain.User) (*domain.User, error)
	GetProfile(ctx context.Context, userID int64) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, userID int64, profile domain.Profile) (*domain.Profile, error)
}

type AuthResult struct {
	Token string             `json:"token"`
	User  domain.UserSummary `json:"user"`
}

// AccountService covers registration, login and profile maintenance.
type AccountService struct {
	users           UserStore
	hasher          *auth.PasswordHasher
	tokens          *auth.TokenService
	isAdminUsername func(string) bool
	log             *zap.Logger
}

func NewAccountService(users UserStore, hasher *auth.PasswordHasher, tokens *auth.TokenService, isAdminUsername func(string) bool, log *zap.Logger) *AccountService {
	if isAdminUsername == nil {
		isAdminUsername = func(string) bool { return false }
	}
	return &AccountService{
		users:           users,
		hasher:          hasher,
		tokens:          tokens,
		isAdminUsername: isAdminUsername,
		log:             log.Named("account"),
	}
}

func (s *AccountService) Register(ctx context.Context, username, password string, profile domain.Profile) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, &domain.ValidationError{Field: "username", Message: "is required"}
	}
	if password == "" {
		return nil, &domain.ValidationError{Field: "password", Message: "is required"}
	}

	_, err := s.users.GetUserByUsername(ctx, username)
	if err == nil {
		return nil, domain.ErrUserExists
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	profile.Normalize()
	user, err := s.users.CreateUser(ctx, domain.User{
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      s.isAdminUsername(username),
		Profile:      profile,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user registered", zap.Int64("user_id", user.ID), zap.Bool("is_admin", user.IsAdmin))
	return s.issue(user)
}

func (s *AccountService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AccountService) issue(user *domain.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Token: token,
		User:  domain.UserSummary{Username: user.Username, IsAdmin: user.IsAdmin},
	}, nil
}

func (s *AccountService) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	return profile, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID int64, profile domain.Profile) (*domain.Profile, error) {
	profile.Normalize()
	updated, err := s.users.UpdateProfile(ctx, userID, profile)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return updated, nil
}

// IsAdmin satisfies auth.AdminChecker.
func (s *AccountService) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lookup user: %w", err)
	}
	return user.IsAdmin, nil
}
