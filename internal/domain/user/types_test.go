//go:build unit

package user_test

import (
	"testing"

	"canyon-booking/internal/domain/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRole(t *testing.T) {
	for _, s := range []string{"super_admin", "admin", "leader", "guide", "employee", "trainee"} {
		role, err := user.NewRole(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, role.String())
	}

	_, err := user.NewRole("viewer")
	assert.ErrorIs(t, err, user.ErrInvalidRole)
}

func TestRole_Permissions(t *testing.T) {
	tests := []struct {
		role           user.Role
		administrative bool
		createSessions bool
		hardDelete     bool
	}{
		{user.RoleSuperAdmin, true, true, true},
		{user.RoleAdmin, true, true, true},
		{user.RoleLeader, true, true, false},
		{user.RoleGuide, false, true, false},
		{user.RoleEmployee, false, true, false},
		{user.RoleTrainee, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			assert.Equal(t, tt.administrative, tt.role.IsAdministrative())
			assert.Equal(t, tt.createSessions, tt.role.CanCreateSessions())
			assert.Equal(t, tt.hardDelete, tt.role.CanHardDelete())
		})
	}
}

func TestPrincipal_CanManage(t *testing.T) {
	owner := uuid.New()

	assert.True(t, user.NewPrincipal(owner, user.RoleGuide, nil).CanManage(owner))
	assert.False(t, user.NewPrincipal(uuid.New(), user.RoleGuide, nil).CanManage(owner))
	assert.True(t, user.NewPrincipal(uuid.New(), user.RoleLeader, nil).CanManage(owner))
}
