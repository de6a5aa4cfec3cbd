// Package authz implements the role-hierarchy policy used by user
// management and task assignment. Decisions are pure functions over a
// closed role set; unknown role names fail closed.
package authz

import (
	"fmt"

	"github.com/sitecrew/sitecrew/internal/shared"
)

// Role is one of the closed set of role names.
type Role string

const (
	// RoleAdmin is the top-privilege role.
	RoleAdmin Role = "Admin"
	// RoleManager is the tier directly below Admin.
	RoleManager Role = "Manager"
	// RoleForeman leads workers on a site.
	RoleForeman Role = "Foreman"
	// RoleWorker is the base role.
	RoleWorker Role = "Worker"
)

// Hierarchy holds the rank table. Construct it with NewHierarchy and
// inject it; there is no package-level singleton.
type Hierarchy struct {
	rank map[Role]int
}

// NewHierarchy builds the canonical rank order Admin > Manager > Foreman > Worker.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{rank: map[Role]int{
		RoleAdmin:   4,
		RoleManager: 3,
		RoleForeman: 2,
		RoleWorker:  1,
	}}
}

// ParseRole validates a role name against the closed set.
func ParseRole(name string) (Role, error) {
	switch Role(name) {
	case RoleAdmin, RoleManager, RoleForeman, RoleWorker:
		return Role(name), nil
	}
	return "", fmt.Errorf("%w: %q", shared.ErrUnknownRole, name)
}

// Rank returns the privilege rank of a role.
func (h *Hierarchy) Rank(role Role) (int, error) {
	r, ok := h.rank[role]
	if !ok {
		return 0, fmt.Errorf("%w: %q", shared.ErrUnknownRole, role)
	}
	return r, nil
}

// CanManageUser reports whether actor may manage the account holding
// target. Admin manages anyone; Manager manages anyone except Admins and
// fellow Managers; every other role is denied.
func (h *Hierarchy) CanManageUser(actor, target Role) (bool, error) {
	if _, err := h.Rank(actor); err != nil {
		return false, err
	}
	if _, err := h.Rank(target); err != nil {
		return false, err
	}
	switch actor {
	case RoleAdmin:
		return true, nil
	case RoleManager:
		return target != RoleAdmin && target != RoleManager, nil
	default:
		return false, nil
	}
}

// CanAssignTask reports whether actor may assign a task to assignee.
// Strictly greater rank is required; equal rank is denied.
func (h *Hierarchy) CanAssignTask(actor, assignee Role) (bool, error) {
	actorRank, err := h.Rank(actor)
	if err != nil {
		return false, err
	}
	assigneeRank, err := h.Rank(assignee)
	if err != nil {
		return false, err
	}
	return actorRank > assigneeRank, nil
}

// CanModifyTask reports whether actor may modify a task. The creator may
// always modify their own task; otherwise the actor must rank at least as
// high as the creator.
func (h *Hierarchy) CanModifyTask(actor Role, isCreator bool, creator Role) (bool, error) {
	if isCreator {
		if _, err := h.Rank(actor); err != nil {
			return false, err
		}
		return true, nil
	}
	actorRank, err := h.Rank(actor)
	if err != nil {
		return false, err
	}
	creatorRank, err := h.Rank(creator)
	if err != nil {
		return false, err
	}
	return actorRank >= creatorRank, nil
}
