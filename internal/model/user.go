package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the access tier of a user.
type Role string

const (
	RoleFree    Role = "free"
	RolePremium Role = "premium"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleFree, RolePremium, RoleAdmin:
		return true
	}
	return false
}

// CanViewPremium reports whether the role unlocks premium content.
func (r Role) CanViewPremium() bool {
	return r == RolePremium || r == RoleAdmin
}

// User is an application account.
type User struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserProfile is the public view of a user returned by the API.
type UserProfile struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// SignupRequest is the payload for creating an account.
type SignupRequest struct {
	FullName string `json:"full_name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=1,max=128"`
}

// AuthResponse is returned after signup, login and a premium upgrade.
type AuthResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}
