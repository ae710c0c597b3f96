package domain

import "time"

// Role enumerates the access levels a user can hold.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User mirrors the persisted representation in the users table.
// PasswordHash is never serialized outward; transport layers build their own
// views from this struct.
type User struct {
	ID           string
	Email        string
	Name         *string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// DisplayName returns the name if set, falling back to the email address.
func (u User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Email
}
