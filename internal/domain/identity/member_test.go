package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMember(t *testing.T) {
	orgID := uuid.New()
	member, err := NewMember(orgID, "user_1", RoleEmployee)

	require.NoError(t, err)
	assert.Equal(t, orgID, member.OrganizationID)
	assert.Equal(t, "user_1", member.ExternalUserID)
	assert.Equal(t, RoleEmployee, member.Role)
	assert.Empty(t, member.Modules())
	assert.False(t, member.IsDeleted())
}

func TestNewMember_Validation(t *testing.T) {
	_, err := NewMember(uuid.Nil, "user_1", RoleEmployee)
	assert.Error(t, err)

	_, err = NewMember(uuid.New(), "", RoleEmployee)
	assert.Error(t, err)

	_, err = NewMember(uuid.New(), "user_1", Role("superuser"))
	assert.Error(t, err)
}

func TestMember_SetAllowedModules(t *testing.T) {
	member, err := NewMember(uuid.New(), "user_1", RoleEmployee)
	require.NoError(t, err)

	require.NoError(t, member.SetAllowedModules([]Module{ModuleCRM, ModuleSales}))
	assert.True(t, member.ModuleAllowed(ModuleCRM))
	assert.False(t, member.ModuleAllowed(ModuleFinance))

	assert.Error(t, member.SetAllowedModules([]Module{Module("BOGUS")}))
}

func TestMember_ChangeRole(t *testing.T) {
	member, err := NewMember(uuid.New(), "user_1", RoleEmployee)
	require.NoError(t, err)

	require.NoError(t, member.ChangeRole(RoleAccountant))
	assert.Equal(t, RoleAccountant, member.Role)

	assert.Error(t, member.ChangeRole(Role("superuser")))
}

func TestMember_Deactivate(t *testing.T) {
	member, err := NewMember(uuid.New(), "user_1", RoleAdmin)
	require.NoError(t, err)
	actor := uuid.New()

	require.NoError(t, member.Deactivate(actor))
	assert.True(t, member.IsDeleted())
	require.NotNil(t, member.DeletedBy)
	assert.Equal(t, actor, *member.DeletedBy)

	// Deactivating twice fails
	assert.Error(t, member.Deactivate(actor))
}
