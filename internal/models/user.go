package models

import (
	"strings"
	"time"
)

// Role is a user's permission level
type Role string

const (
	RoleLearner Role = "learner"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleLearner || r == RoleAdmin
}

// User is an account that can log in
type User struct {
	ID           UserID    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	EmployeeID   string    `json:"employee_id"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// FullName joins first and last name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// DefaultEmployeeID derives an employee ID from the user ID
func DefaultEmployeeID(id UserID) string {
	s := string(id)
	if len(s) > 8 {
		s = s[:8]
	}
	return "EMP-" + strings.ToUpper(s)
}

// RegisterRequest creates a learner account
type RegisterRequest struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	EmployeeID *string `json:"employee_id,omitempty"`
}

// LoginRequest holds login credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by login and register
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *User     `json:"user"`
}

// UpdateProfileRequest changes the caller's name; nil or empty fields are left as they are
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// UpdateRoleRequest changes a user's role
type UpdateRoleRequest struct {
	Role Role `json:"role"`
}
