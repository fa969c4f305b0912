package models

import (
	"time"
)

// Roles stored in users.role
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is a row of the users table as seen by the suite
type User struct {
	ID          string     `json:"id" db:"id"`
	Username    string     `json:"username" db:"username"`
	Email       string     `json:"email" db:"email"`
	Role        string     `json:"role" db:"role"`
	BannedUntil *time.Time `json:"banned_until,omitempty" db:"banned_until"`
}

// Banned reports whether the user is banned at the given instant
func (u *User) Banned(at time.Time) bool {
	return u.BannedUntil != nil && u.BannedUntil.After(at)
}

// DisplayRole is the role label the web UI renders, e.g. ROLE_ADMIN
func (u *User) DisplayRole() string {
	return "ROLE_" + u.Role
}
