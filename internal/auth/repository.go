package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrUserNotFound is returned when no account matches
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when an email is already registered
	ErrUserExists = errors.New("user already exists")
)

// Repository keeps accounts in memory. Ids are derived from the email, so a
// user who logs in again after a restart keeps the same id.
type Repository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*User
	byEmail map[string]uuid.UUID
}

// NewRepository creates a new auth repository
func NewRepository() *Repository {
	return &Repository{
		byID:    make(map[uuid.UUID]*User),
		byEmail: make(map[string]uuid.UUID),
	}
}

// CreateUser stores user
func (r *Repository) CreateUser(_ context.Context, user *User) error {
	email := normalizeEmail(user.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[email]; ok {
		return fmt.Errorf("failed to create user: %w", ErrUserExists)
	}
	stored := *user
	r.byID[user.ID] = &stored
	r.byEmail[email] = user.ID
	return nil
}

// GetUserByEmail retrieves a user by email, ignoring case
func (r *Repository) GetUserByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, fmt.Errorf("failed to get user: %w", ErrUserNotFound)
	}
	user := *r.byID[id]
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(_ context.Context, id uuid.UUID) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("failed to get user: %w", ErrUserNotFound)
	}
	user := *stored
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
