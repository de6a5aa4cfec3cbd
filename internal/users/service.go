package users

import (
	"context"
	"fmt"

	"github.com/sitecrew/sitecrew/internal/authz"
	"github.com/sitecrew/sitecrew/internal/roles"
	"github.com/sitecrew/sitecrew/internal/shared"
)

// Service handles user management guarded by the role hierarchy.
type Service struct {
	repo      Repository
	roles     roles.Repository
	hierarchy *authz.Hierarchy
}

// NewService builds a Service instance.
func NewService(repo Repository, roleRepo roles.Repository, hierarchy *authz.Hierarchy) *Service {
	return &Service{repo: repo, roles: roleRepo, hierarchy: hierarchy}
}

// List returns all users. Only the management tiers may browse accounts.
func (s *Service) List(ctx context.Context, actorRole string) ([]User, error) {
	actor, err := authz.ParseRole(actorRole)
	if err != nil {
		return nil, err
	}
	if actor != authz.RoleAdmin && actor != authz.RoleManager {
		return nil, shared.ErrForbidden
	}
	return s.repo.List(ctx)
}

// ChangeRole moves the target user to a new role. The actor must be able
// to manage both the target's current role and the role being granted.
func (s *Service) ChangeRole(ctx context.Context, actorRole string, targetID int64, newRoleName string) error {
	actor, err := authz.ParseRole(actorRole)
	if err != nil {
		return err
	}
	newRole, err := authz.ParseRole(newRoleName)
	if err != nil {
		return err
	}

	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return err
	}

	if err := s.authorizeManage(actor, target.RoleName); err != nil {
		return err
	}
	if ok, err := s.hierarchy.CanManageUser(actor, newRole); err != nil {
		return err
	} else if !ok {
		return shared.ErrForbidden
	}

	role, err := s.roles.FindByName(ctx, newRoleName)
	if err != nil {
		return fmt.Errorf("users: resolve new role: %w", err)
	}
	return s.repo.UpdateRole(ctx, targetID, role.ID)
}

// Deactivate disables the target account.
func (s *Service) Deactivate(ctx context.Context, actorRole string, targetID int64) error {
	actor, err := authz.ParseRole(actorRole)
	if err != nil {
		return err
	}
	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if err := s.authorizeManage(actor, target.RoleName); err != nil {
		return err
	}
	return s.repo.SetActive(ctx, targetID, false)
}

func (s *Service) authorizeManage(actor authz.Role, targetRoleName string) error {
	target, err := authz.ParseRole(targetRoleName)
	if err != nil {
		return err
	}
	ok, err := s.hierarchy.CanManageUser(actor, target)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrForbidden
	}
	return nil
}
