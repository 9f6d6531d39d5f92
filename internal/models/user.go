package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleInputter      Role = "INPUTTER"
	RoleApprover      Role = "APPROVER"
	RoleAdministrator Role = "ADMINISTRATOR"
	RoleViewer        Role = "VIEWER"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleInputter, RoleApprover, RoleAdministrator, RoleViewer:
		return true
	}
	return false
}

// CanReview is true for roles allowed to approve, reject and archive
func (r Role) CanReview() bool {
	return r == RoleApprover || r == RoleAdministrator
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"` // false = suspended
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DisplayName falls back to the email when no name was recorded
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Actor is the authenticated user performing an operation. It is resolved
// per request and passed explicitly into every service call.
type Actor struct {
	UserID   uuid.UUID `json:"user_id"`
	Role     Role      `json:"role"`
	IsActive bool      `json:"is_active"`
}

// ActorFromUser builds an Actor from the directory record
func ActorFromUser(u *User) Actor {
	return Actor{UserID: u.ID, Role: u.Role, IsActive: u.IsActive}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     Role   `json:"role" validate:"required,oneof=INPUTTER APPROVER ADMINISTRATOR VIEWER"`
}
