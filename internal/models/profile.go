package models

import (
	"time"
)

// Role is a user's back-office permission level
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleAuthor Role = "author"
	RoleReader Role = "reader"
)

// DefaultRole applies to users without a role record
const DefaultRole = RoleReader

// ValidRoles defines allowed user roles
var ValidRoles = map[Role]bool{
	RoleAdmin:  true,
	RoleAuthor: true,
	RoleReader: true,
}

// Profile is the public identity of an authenticated user. ID equals the
// subject of the identity provider's token.
type Profile struct {
	ID        string    `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	FullName  string    `json:"full_name,omitempty" db:"full_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UserRole is the single role record of a user
type UserRole struct {
	UserID    string    `json:"user_id" db:"user_id"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UserWithRole is a row of the admin user listing
type UserWithRole struct {
	Profile
	Role Role `json:"role"`
}

// RoleRequest is the admin role assignment payload
type RoleRequest struct {
	Role string `json:"role"`
}

// DashboardStats holds exact row counts for the admin dashboard
type DashboardStats struct {
	Posts      int `json:"posts"`
	Categories int `json:"categories"`
	Users      int `json:"users"`
	Comments   int `json:"comments"`
}
