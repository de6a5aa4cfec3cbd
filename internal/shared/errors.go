package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure. Unknown email and
	// wrong password both map here so callers cannot tell them apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMaintenance indicates the platform is in maintenance mode and the
	// actor is not privileged to bypass it.
	ErrMaintenance = errors.New("maintenance mode active")
	// ErrRateLimited indicates a quota was exhausted.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrTokenInvalid indicates a reset token that matches no record.
	ErrTokenInvalid = errors.New("reset token invalid")
	// ErrTokenUsed indicates a reset token that was already consumed.
	ErrTokenUsed = errors.New("reset token already used")
	// ErrTokenExpired indicates a reset token past its expiry.
	ErrTokenExpired = errors.New("reset token expired")
	// ErrForbidden indicates a role-hierarchy check denied the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrUnknownRole indicates a role name outside the closed role set.
	ErrUnknownRole = errors.New("unknown role")
)
