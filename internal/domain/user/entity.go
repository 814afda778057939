package user

import (
	"time"

	"github.com/google/uuid"
)

// Role represents user role in the system (matches user_role enum)
type Role string

const (
	RoleUser     Role = "user"
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// User represents a user account (matches users table)
type User struct {
	ID           uuid.UUID     `db:"id" json:"id"`
	Email        string        `db:"email" json:"email"`
	Username     string        `db:"username" json:"username"`
	PasswordHash string        `db:"password_hash" json:"-"`
	Role         Role          `db:"role" json:"role"`
	ReferrerID   uuid.NullUUID `db:"referrer_id" json:"referrer_id,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}

// IsStaff returns true for roles exempt from login lockout and allowed to
// process wallet requests
func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleEmployee
}

// IsValidRole checks if role is valid for registration
func IsValidRole(role string) bool {
	return role == string(RoleUser) || role == string(RoleEmployee) || role == string(RoleAdmin)
}
