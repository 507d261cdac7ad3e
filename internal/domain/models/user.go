package models

import (
	"strings"
	"time"
)

// Role represents the access level of a user
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEngineer Role = "engineer"
	RoleOperator Role = "operator"
)

// User represents a dashboard account
type User struct {
	ID         int64      `json:"id" db:"id"`
	Username   string     `json:"username" db:"username"`
	Password   string     `json:"-" db:"password"`
	FullName   string     `json:"fullName" db:"full_name"`
	Role       Role       `json:"role" db:"role"`
	Email      string     `json:"email" db:"email"`
	Department string     `json:"department" db:"department"`
	IsActive   bool       `json:"isActive" db:"is_active"`
	LastLogin  *time.Time `json:"lastLogin,omitempty" db:"last_login"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
}

// Actor identifies the authenticated user performing an operation
type Actor struct {
	UserID int64
	Role   Role
}

// CanApprove reports whether the actor may approve or reject work permits
func (a Actor) CanApprove() bool {
	return a.Role == RoleAdmin || a.Role == RoleManager
}

// IsAdmin reports whether the actor has the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// NormalizeUsername returns the case-insensitive lookup key for a username
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateRole checks if the role is valid
func ValidateRole(role Role) error {
	switch role {
	case RoleAdmin, RoleManager, RoleEngineer, RoleOperator:
		return nil
	default:
		return Invalidf("unknown role %q", role)
	}
}

// Validate checks the required user fields
func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return Invalidf("username is required")
	}
	if u.Password == "" {
		return Invalidf("password is required")
	}
	return ValidateRole(u.Role)
}

// UserPatch holds the admin-editable user fields
type UserPatch struct {
	FullName   *string
	Email      *string
	Department *string
	Role       *Role
	IsActive   *bool
}

// Apply merges the patch into u
func (p UserPatch) Apply(u *User) error {
	if p.Role != nil {
		if err := ValidateRole(*p.Role); err != nil {
			return err
		}
		u.Role = *p.Role
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Department != nil {
		u.Department = *p.Department
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	return nil
}
