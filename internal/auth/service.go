package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/secureverify/pkg/common"
	"github.com/richxcame/secureverify/pkg/config"
	"github.com/richxcame/secureverify/pkg/logger"
	"github.com/richxcame/secureverify/pkg/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// userNamespace seeds the deterministic user ids
var userNamespace = uuid.MustParse("6f1d4c2a-3b5e-4f7a-9c8d-2e1b0a9f8c7d")

// Service is a mock identity provider. It does not verify who a user is;
// it only issues tokens the rest of the service can trust.
type Service struct {
	repo     RepositoryInterface
	secret   string
	tokenTTL time.Duration
	now      func() time.Time
}

// NewService creates a new auth service
func NewService(repo RepositoryInterface, cfg config.JWTConfig) *Service {
	ttl := cfg.TokenTTL()
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		repo:     repo,
		secret:   cfg.Secret,
		tokenTTL: ttl,
		now:      time.Now,
	}
}

// UserIDForEmail returns the stable id assigned to email
func UserIDForEmail(email string) uuid.UUID {
	return uuid.NewSHA1(userNamespace, []byte(normalizeEmail(email)))
}

// RoleForEmail returns admin for addresses containing "admin" as typed, user otherwise
func RoleForEmail(email string) string {
	if strings.Contains(email, "admin") {
		return RoleAdmin
	}
	return RoleUser
}

// Register creates a user account and signs it in
func (s *Service) Register(ctx context.Context, name, email, password string) (*LoginResponse, error) {
	user, err := s.newUser(name, email, password, RoleUser)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrUserExists) {
			return nil, common.NewConflictError("user with this email already exists")
		}
		return nil, common.NewInternalError("failed to create user", err)
	}

	logger.WithContext(ctx).Info("user registered", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

// Login signs a user in. Unknown emails are provisioned on first login.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, common.NewUnauthorizedError("invalid credentials")
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		user, err = s.provision(ctx, email, password)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, common.NewInternalError("failed to look up user", err)
	default:
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			return nil, common.NewUnauthorizedError("invalid credentials")
		}
	}

	return s.issue(user)
}

// GetProfile returns the account behind userID
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, common.NewNotFoundError("user not found", err)
		}
		return nil, common.NewInternalError("failed to get user", err)
	}
	return user, nil
}

func (s *Service) provision(ctx context.Context, email, password string) (*User, error) {
	name, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	user, err := s.newUser(name, email, password, RoleForEmail(email))
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if !errors.Is(err, ErrUserExists) {
			return nil, common.NewInternalError("failed to create user", err)
		}
		// a concurrent login created it first
		existing, getErr := s.repo.GetUserByEmail(ctx, email)
		if getErr != nil {
			return nil, common.NewInternalError("failed to look up user", getErr)
		}
		if bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(password)) != nil {
			return nil, common.NewUnauthorizedError("invalid credentials")
		}
		return existing, nil
	}

	logger.WithContext(ctx).Info("user provisioned on first login",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role))
	return user, nil
}

func (s *Service) newUser(name, email, password, role string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.NewInternalError("failed to hash password", err)
	}
	email = strings.TrimSpace(email)
	return &User{
		ID:           UserIDForEmail(email),
		Name:         strings.TrimSpace(name),
		Email:        email,
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}, nil
}

func (s *Service) issue(user *User) (*LoginResponse, error) {
	token, expiresAt, err := middleware.IssueToken(s.secret, user.ID, user.Email, user.Role, s.tokenTTL)
	if err != nil {
		return nil, common.NewInternalError("failed to generate token", err)
	}
	return &LoginResponse{User: user, Token: token, ExpiresAt: expiresAt}, nil
}
