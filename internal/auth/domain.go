package auth

import "time"

// User represents an account identity.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	RoleID       int64
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is the result of a successful login: the signed token plus the
// identity summary the caller needs.
type Session struct {
	Token    string
	UserID   int64
	Email    string
	RoleID   int64
	RoleName string
}
