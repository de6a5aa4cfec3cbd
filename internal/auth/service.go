package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sitecrew/sitecrew/internal/authz"
	"github.com/sitecrew/sitecrew/internal/shared"
)

// RoleResolver resolves the role name attached to an identity.
type RoleResolver interface {
	ResolveRoleName(ctx context.Context, roleID int64) (string, error)
}

// MaintenanceSource reports whether the platform is in maintenance mode.
type MaintenanceSource interface {
	Active(ctx context.Context) bool
}

// Service implements credential verification.
type Service struct {
	repo        Repository
	roles       RoleResolver
	maintenance MaintenanceSource
	codec       *TokenCodec
	logger      *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, roles RoleResolver, maintenance MaintenanceSource, codec *TokenCodec, logger *slog.Logger) *Service {
	return &Service{repo: repo, roles: roles, maintenance: maintenance, codec: codec, logger: logger}
}

// Login verifies email/password credentials and issues a session token.
//
// Unknown email, wrong password, and deactivated accounts all collapse to
// shared.ErrInvalidCredentials; the unknown-email path still pays one
// bcrypt comparison so it is not distinguishable by timing. Maintenance
// mode rejects every role but Admin with shared.ErrMaintenance.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	maintActive := s.maintenance.Active(ctx)

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			burnVerification(password)
			return nil, shared.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth: find identity: %w", err)
	}

	roleName, err := s.roles.ResolveRoleName(ctx, user.RoleID)
	if err != nil {
		return nil, fmt.Errorf("auth: resolve role: %w", err)
	}
	role, err := authz.ParseRole(roleName)
	if err != nil {
		// Fail closed on role names outside the closed set.
		return nil, fmt.Errorf("auth: %w", err)
	}

	if maintActive && role != authz.RoleAdmin {
		return nil, shared.ErrMaintenance
	}

	if !user.IsActive || !VerifyPassword(user.PasswordHash, password) {
		return nil, shared.ErrInvalidCredentials
	}

	token, err := s.codec.Issue(user.ID, user.Email, roleName)
	if err != nil {
		return nil, err
	}

	s.logger.Info("login", slog.Int64("user_id", user.ID), slog.String("role", roleName))

	return &Session{
		Token:    token,
		UserID:   user.ID,
		Email:    user.Email,
		RoleID:   user.RoleID,
		RoleName: roleName,
	}, nil
}
