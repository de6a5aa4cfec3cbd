// Package tasks implements site task assignment guarded by the role
// hierarchy.
package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sitecrew/sitecrew/internal/authz"
	"github.com/sitecrew/sitecrew/internal/shared"
)

// Actor identifies the authenticated caller for authorization checks.
type Actor struct {
	UserID int64
	Role   string
}

// Service orchestrates task operations.
type Service struct {
	repo      Repository
	hierarchy *authz.Hierarchy
}

// NewService constructs a Service.
func NewService(repo Repository, hierarchy *authz.Hierarchy) *Service {
	return &Service{repo: repo, hierarchy: hierarchy}
}

// Create opens a task assigned to assigneeID. Assignment requires the
// actor to rank strictly above the assignee.
func (s *Service) Create(ctx context.Context, actor Actor, site, title string, assigneeID int64) (*Task, error) {
	actorRole, err := authz.ParseRole(actor.Role)
	if err != nil {
		return nil, err
	}
	assigneeName, err := s.repo.ResolveUserRole(ctx, assigneeID)
	if err != nil {
		return nil, err
	}
	assigneeRole, err := authz.ParseRole(assigneeName)
	if err != nil {
		return nil, err
	}

	ok, err := s.hierarchy.CanAssignTask(actorRole, assigneeRole)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.ErrForbidden
	}

	now := time.Now().UTC()
	task := &Task{
		ID:           uuid.New(),
		Site:         site,
		Title:        title,
		Status:       StatusOpen,
		CreatorID:    actor.UserID,
		CreatorRole:  actor.Role,
		AssigneeID:   assigneeID,
		AssigneeRole: assigneeName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateStatus moves a task to a new status. The creator may always
// modify their own task; anyone else needs at least the creator's rank.
func (s *Service) UpdateStatus(ctx context.Context, actor Actor, taskID uuid.UUID, status Status) error {
	actorRole, err := authz.ParseRole(actor.Role)
	if err != nil {
		return err
	}

	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return err
	}
	creatorRole, err := authz.ParseRole(task.CreatorRole)
	if err != nil {
		return err
	}

	ok, err := s.hierarchy.CanModifyTask(actorRole, actor.UserID == task.CreatorID, creatorRole)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrForbidden
	}

	return s.repo.UpdateStatus(ctx, taskID, status)
}
