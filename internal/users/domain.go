package users

import "time"

// User is the management view of an account: identity fields plus the
// resolved role name.
type User struct {
	ID        int64
	Email     string
	Name      string
	RoleID    int64
	RoleName  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
