// Package access turns verified identities into capabilities the verification
// machine accepts for admin decisions.
package access

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/secureverify/pkg/middleware"
)

// ErrNotAdmin is returned when an identity may not act as a reviewer
var ErrNotAdmin = errors.New("access: identity is not an admin")

// ErrNoIdentity is returned when the request carries no authenticated identity
var ErrNoIdentity = errors.New("access: no authenticated identity")

// Identity is the caller as established by a validated token
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// IdentityFromContext reads the identity AuthMiddleware placed on the gin context
func IdentityFromContext(c *gin.Context) (Identity, error) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return Identity{}, ErrNoIdentity
	}
	role, err := middleware.GetUserRole(c)
	if err != nil {
		return Identity{}, ErrNoIdentity
	}
	return Identity{UserID: userID, Email: middleware.GetUserEmail(c), Role: role}, nil
}

// AdminCapability proves an admin identity was checked. Only Authorizer can mint a valid one.
type AdminCapability struct {
	adminID uuid.UUID
	issued  bool
}

// Valid reports whether the capability was issued by an Authorizer
func (c *AdminCapability) Valid() bool {
	return c != nil && c.issued && c.adminID != uuid.Nil
}

// AdminID is the reviewer the capability was issued to
func (c *AdminCapability) AdminID() uuid.UUID {
	if c == nil {
		return uuid.Nil
	}
	return c.adminID
}

// Authorizer issues capabilities from identities
type Authorizer struct {
	adminRole string
}

// NewAuthorizer creates an authorizer that recognizes middleware.RoleAdmin
func NewAuthorizer() *Authorizer {
	return &Authorizer{adminRole: middleware.RoleAdmin}
}

// GrantAdmin returns a capability when identity holds the admin role
func (a *Authorizer) GrantAdmin(identity Identity) (*AdminCapability, error) {
	if identity.UserID == uuid.Nil {
		return nil, ErrNoIdentity
	}
	if !strings.EqualFold(identity.Role, a.adminRole) {
		return nil, ErrNotAdmin
	}
	return &AdminCapability{adminID: identity.UserID, issued: true}, nil
}
