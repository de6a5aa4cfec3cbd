package reset

import (
	"time"

	"github.com/google/uuid"
)

// Token is a persisted password-reset token. Only the SHA-256 digest of
// the raw secret is stored; the raw secret leaves the process exactly
// once, inside the reset mail.
type Token struct {
	ID         uuid.UUID
	UserID     int64
	Digest     string
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	RequestIP  string
	RequestUA  string
	CreatedAt  time.Time
}

// Consumed reports whether the token was already used.
func (t *Token) Consumed() bool {
	return t.ConsumedAt != nil
}

// Expired reports whether the token is past its expiry at the given time.
func (t *Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// RequestMeta carries origin metadata recorded with a reset request.
type RequestMeta struct {
	IP        string
	UserAgent string
}
