package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sitecrew/sitecrew/internal/auth"
	"github.com/sitecrew/sitecrew/internal/shared"
	_ "github.com/sitecrew/sitecrew/testing"
)

type stubRepo struct {
	byEmail map[string]*auth.User
	updated map[int64]string
}

func (r *stubRepo) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *stubRepo) FindByID(_ context.Context, id int64) (*auth.User, error) {
	for _, user := range r.byEmail {
		if user.ID == id {
			clone := *user
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *stubRepo) UpdateCredential(_ context.Context, id int64, passwordHash string) error {
	if r.updated == nil {
		r.updated = map[int64]string{}
	}
	r.updated[id] = passwordHash
	return nil
}

type stubRoles struct {
	names map[int64]string
}

func (s stubRoles) ResolveRoleName(_ context.Context, roleID int64) (string, error) {
	name, ok := s.names[roleID]
	if !ok {
		return "", shared.ErrNotFound
	}
	return name, nil
}

type stubMaintenance struct {
	active bool
}

func (s stubMaintenance) Active(context.Context) bool { return s.active }

func mustHash(t *testing.T, password string) string {
	t.Helper()
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(digest)
}

func newService(t *testing.T, repo *stubRepo, maint bool) *auth.Service {
	t.Helper()
	roles := stubRoles{names: map[int64]string{1: "Admin", 2: "Manager", 3: "Foreman", 4: "Worker"}}
	codec := auth.NewTokenCodec("test-secret", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return auth.NewService(repo, roles, stubMaintenance{active: maint}, codec, logger)
}

func TestLoginSuccess(t *testing.T) {
	repo := &stubRepo{byEmail: map[string]*auth.User{
		"a@x.com": {ID: 7, Email: "a@x.com", PasswordHash: mustHash(t, "Str0ng!Pass123"), RoleID: 4, IsActive: true},
	}}
	svc := newService(t, repo, false)

	session, err := svc.Login(context.Background(), "a@x.com", "Str0ng!Pass123")
	require.NoError(t, err)
	assert.Equal(t, int64(7), session.UserID)
	assert.Equal(t, "a@x.com", session.Email)
	assert.Equal(t, "Worker", session.RoleName)
	assert.NotEmpty(t, session.Token)

	claims, err := auth.NewTokenCodec("test-secret", time.Hour).Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "Worker", claims.Role)
}

func TestLoginUnknownAndWrongPasswordCollapse(t *testing.T) {
	repo := &stubRepo{byEmail: map[string]*auth.User{
		"a@x.com": {ID: 7, Email: "a@x.com", PasswordHash: mustHash(t, "Str0ng!Pass123"), RoleID: 4, IsActive: true},
	}}
	svc := newService(t, repo, false)

	_, unknownErr := svc.Login(context.Background(), "nobody@x.com", "whatever")
	_, wrongErr := svc.Login(context.Background(), "a@x.com", "not-the-password")

	assert.True(t, errors.Is(unknownErr, shared.ErrInvalidCredentials))
	assert.True(t, errors.Is(wrongErr, shared.ErrInvalidCredentials))
	assert.Equal(t, unknownErr, wrongErr)
}

func TestLoginInactiveAccount(t *testing.T) {
	repo := &stubRepo{byEmail: map[string]*auth.User{
		"a@x.com": {ID: 7, Email: "a@x.com", PasswordHash: mustHash(t, "Str0ng!Pass123"), RoleID: 4, IsActive: false},
	}}
	svc := newService(t, repo, false)

	_, err := svc.Login(context.Background(), "a@x.com", "Str0ng!Pass123")
	assert.True(t, errors.Is(err, shared.ErrInvalidCredentials))
}

func TestLoginMaintenanceBlocksNonAdmin(t *testing.T) {
	repo := &stubRepo{byEmail: map[string]*auth.User{
		"worker@x.com": {ID: 7, Email: "worker@x.com", PasswordHash: mustHash(t, "pw"), RoleID: 4, IsActive: true},
		"admin@x.com":  {ID: 1, Email: "admin@x.com", PasswordHash: mustHash(t, "pw"), RoleID: 1, IsActive: true},
	}}
	svc := newService(t, repo, true)

	_, err := svc.Login(context.Background(), "worker@x.com", "pw")
	assert.True(t, errors.Is(err, shared.ErrMaintenance))

	session, err := svc.Login(context.Background(), "admin@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Admin", session.RoleName)
}

func TestLoginMaintenanceUnknownEmailStaysGeneric(t *testing.T) {
	svc := newService(t, &stubRepo{byEmail: map[string]*auth.User{}}, true)

	_, err := svc.Login(context.Background(), "nobody@x.com", "pw")
	assert.True(t, errors.Is(err, shared.ErrInvalidCredentials))
}

func TestLoginUnknownRoleFailsClosed(t *testing.T) {
	repo := &stubRepo{byEmail: map[string]*auth.User{
		"a@x.com": {ID: 7, Email: "a@x.com", PasswordHash: mustHash(t, "pw"), RoleID: 99, IsActive: true},
	}}
	roles := stubRoles{names: map[int64]string{99: "Superuser"}}
	codec := auth.NewTokenCodec("test-secret", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := auth.NewService(repo, roles, stubMaintenance{}, codec, logger)

	_, err := svc.Login(context.Background(), "a@x.com", "pw")
	assert.True(t, errors.Is(err, shared.ErrUnknownRole))
}
