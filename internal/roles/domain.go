package roles

import "time"

// Role is a named privilege tier. Rank ordering lives in internal/authz;
// this package only persists and resolves names.
type Role struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
