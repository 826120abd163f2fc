package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User domain errors.
var (
	ErrUserNotFound       = &Error{Code: ENOTFOUND, Message: "User not found"}
	ErrEmailTaken         = &Error{Code: ECONFLICT, Message: "Email address already registered"}
	ErrInvalidCredentials = &Error{Code: EUNAUTHORIZED, Message: "Incorrect email or password"}
	ErrSessionNotFound    = &Error{Code: EUNAUTHORIZED, Message: "Session expired or not found"}
)

// Role controls access to back-office routes. Customers shop; staff,
// managers, and storage operators manage the catalog.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleManager  Role = "manager"
	RoleStorage  Role = "storage"
)

// BackOffice reports whether the role may manage the catalog.
func (r Role) BackOffice() bool {
	switch r {
	case RoleStaff, RoleManager, RoleStorage:
		return true
	}
	return false
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleStaff, RoleManager, RoleStorage:
		return true
	}
	return false
}

// User is a registered account. The user's ID string doubles as their cart
// ownerKey once authenticated.
type User struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
	Role        Role
	LastLoginAt time.Time
	CreatedAt   time.Time
}

// OwnerKey returns the cart owner key for this user.
func (u *User) OwnerKey() string {
	return u.ID.String()
}

// SignupParams contains validated input for registering a user.
type SignupParams struct {
	Email       string `validate:"required,email,max=254"`
	Password    string `validate:"required,min=8,max=128"`
	DisplayName string `validate:"required,max=100"`
}

// UserService manages accounts and login sessions.
type UserService interface {
	// Signup registers a new customer account.
	Signup(ctx context.Context, params SignupParams) (*User, error)

	// Login verifies credentials and opens a session, returning the session
	// token to set as a cookie.
	Login(ctx context.Context, email, password string) (*User, string, error)

	// Logout closes the session. Unknown tokens are a no-op.
	Logout(ctx context.Context, token string) error

	// GetBySessionToken resolves a session token to its user.
	GetBySessionToken(ctx context.Context, token string) (*User, error)
}
