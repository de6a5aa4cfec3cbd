package authz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitecrew/sitecrew/internal/shared"
)

func TestCanManageUser(t *testing.T) {
	h := NewHierarchy()

	cases := []struct {
		name    string
		actor   Role
		target  Role
		allowed bool
	}{
		{"admin manages admin", RoleAdmin, RoleAdmin, true},
		{"admin manages manager", RoleAdmin, RoleManager, true},
		{"admin manages worker", RoleAdmin, RoleWorker, true},
		{"manager manages foreman", RoleManager, RoleForeman, true},
		{"manager manages worker", RoleManager, RoleWorker, true},
		{"manager cannot manage admin", RoleManager, RoleAdmin, false},
		{"manager cannot manage manager", RoleManager, RoleManager, false},
		{"foreman cannot manage worker", RoleForeman, RoleWorker, false},
		{"worker cannot manage worker", RoleWorker, RoleWorker, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := h.CanManageUser(tc.actor, tc.target)
			require.NoError(t, err)
			assert.Equal(t, tc.allowed, got)
		})
	}
}

func TestCanAssignTaskStrictRank(t *testing.T) {
	h := NewHierarchy()

	cases := []struct {
		name     string
		actor    Role
		assignee Role
		allowed  bool
	}{
		{"admin assigns worker", RoleAdmin, RoleWorker, true},
		{"admin assigns manager", RoleAdmin, RoleManager, true},
		{"manager assigns foreman", RoleManager, RoleForeman, true},
		{"foreman assigns worker", RoleForeman, RoleWorker, true},
		{"equal rank denied", RoleForeman, RoleForeman, false},
		{"admin to admin denied", RoleAdmin, RoleAdmin, false},
		{"worker cannot assign upward", RoleWorker, RoleForeman, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := h.CanAssignTask(tc.actor, tc.assignee)
			require.NoError(t, err)
			assert.Equal(t, tc.allowed, got)
		})
	}
}

func TestCanModifyTask(t *testing.T) {
	h := NewHierarchy()

	got, err := h.CanModifyTask(RoleWorker, true, RoleAdmin)
	require.NoError(t, err)
	assert.True(t, got, "creator may always modify")

	got, err = h.CanModifyTask(RoleManager, false, RoleForeman)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = h.CanModifyTask(RoleForeman, false, RoleForeman)
	require.NoError(t, err)
	assert.True(t, got, "equal rank may modify")

	got, err = h.CanModifyTask(RoleWorker, false, RoleForeman)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestUnknownRolesFailClosed(t *testing.T) {
	h := NewHierarchy()

	_, err := ParseRole("Supervisor")
	assert.True(t, errors.Is(err, shared.ErrUnknownRole))

	_, err = h.CanManageUser("Supervisor", RoleWorker)
	assert.True(t, errors.Is(err, shared.ErrUnknownRole))

	_, err = h.CanAssignTask(RoleAdmin, "ghost")
	assert.True(t, errors.Is(err, shared.ErrUnknownRole))

	_, err = h.CanModifyTask("ghost", false, RoleWorker)
	assert.True(t, errors.Is(err, shared.ErrUnknownRole))

	_, err = h.CanModifyTask("ghost", true, RoleWorker)
	assert.True(t, errors.Is(err, shared.ErrUnknownRole), "creator override still validates the actor role")
}
