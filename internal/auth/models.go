package auth

import (
	"time"

	"github.com/google/uuid"
)

// Roles issued by the identity provider
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account known to the mock identity provider
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginResponse is returned by register and login
type LoginResponse struct {
	User      *User     `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
