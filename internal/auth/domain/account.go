package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleRegular   Role = "regular"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleRegular, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
	StatusDeleted   Status = "deleted"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended, StatusDeleted:
		return true
	}
	return false
}

type Account struct {
	ID           string
	Email        string // normalized, see NormalizeEmail
	PasswordHash string // argon2id PHC string
	Name         string
	Role         Role
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public returns a copy of the account without its password hash.
func (a Account) Public() Account {
	a.PasswordHash = ""
	return a
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
// Every lookup and insert goes through it so comparisons are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
