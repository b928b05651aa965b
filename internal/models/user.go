package models

import "time"

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// User is the persistent account record. PasswordHash is nil for rows that
// were seeded or imported without a credential; such accounts cannot log in.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	Name         string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
