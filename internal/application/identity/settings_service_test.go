package identity

import (
	"context"
	"testing"

	"github.com/biashara/backend/internal/domain/identity"
	"github.com/biashara/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Helpers
// =============================================================================

type settingsFixture struct {
	orgRepo    *MockOrganizationRepository
	memberRepo *MockMemberRepository
	service    *SettingsService
	org        *identity.Organization
	admin      *identity.Member
}

func newSettingsFixture(t *testing.T) *settingsFixture {
	t.Helper()

	org, err := identity.NewOrganization("org_ext_1", "Acme", "acme")
	require.NoError(t, err)
	org.ClearDomainEvents()

	admin, err := identity.NewMember(org.ID, "admin_ext", identity.RoleAdmin)
	require.NoError(t, err)

	orgRepo := new(MockOrganizationRepository)
	memberRepo := new(MockMemberRepository)

	return &settingsFixture{
		orgRepo:    orgRepo,
		memberRepo: memberRepo,
		service:    NewSettingsService(orgRepo, memberRepo, nil, nil, nil),
		org:        org,
		admin:      admin,
	}
}

func (f *settingsFixture) actor() MutationContext {
	return MutationContext{
		Actor: AccessContext{
			OrgID:    f.org.ID,
			MemberID: f.admin.ID,
			Role:     f.admin.Role,
		},
		ClientIP:  "10.0.0.1",
		UserAgent: "test-agent",
	}
}

func (f *settingsFixture) employee(t *testing.T) *identity.Member {
	t.Helper()
	member, err := identity.NewMember(f.org.ID, "employee_ext", identity.RoleEmployee)
	require.NoError(t, err)
	return member
}

// =============================================================================
// Tests
// =============================================================================

func TestSetMemberModules_UpdatesAndPersists(t *testing.T) {
	f := newSettingsFixture(t)
	member := f.employee(t)

	f.memberRepo.On("FindByID", mock.Anything, member.ID).Return(member, nil)
	f.memberRepo.On("Update", mock.Anything, member).Return(nil)

	updated, err := f.service.SetMemberModules(context.Background(), f.actor(), member.ID,
		[]identity.Module{identity.ModuleSales, identity.ModuleCRM})

	require.NoError(t, err)
	assert.ElementsMatch(t, []identity.Module{identity.ModuleSales, identity.ModuleCRM}, updated.Modules())
	f.memberRepo.AssertExpectations(t)
}

func TestSetMemberModules_RejectsUnknownModule(t *testing.T) {
	f := newSettingsFixture(t)
	member := f.employee(t)

	f.memberRepo.On("FindByID", mock.Anything, member.ID).Return(member, nil)

	_, err := f.service.SetMemberModules(context.Background(), f.actor(), member.ID,
		[]identity.Module{identity.Module("BOGUS")})

	assert.Error(t, err)
	f.memberRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSetMemberModules_OtherTenantMemberIsNotFound(t *testing.T) {
	f := newSettingsFixture(t)

	otherOrg, err := identity.NewOrganization("org_ext_2", "Other", "other")
	require.NoError(t, err)
	foreign, err := identity.NewMember(otherOrg.ID, "foreign_ext", identity.RoleEmployee)
	require.NoError(t, err)

	f.memberRepo.On("FindByID", mock.Anything, foreign.ID).Return(foreign, nil)

	_, err = f.service.SetMemberModules(context.Background(), f.actor(), foreign.ID,
		[]identity.Module{identity.ModuleSales})

	// Cross-tenant access must be indistinguishable from a missing record
	assert.ErrorIs(t, err, shared.ErrNotFound)
	f.memberRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestChangeMemberRole_UpdatesRole(t *testing.T) {
	f := newSettingsFixture(t)
	member := f.employee(t)

	f.memberRepo.On("FindByID", mock.Anything, member.ID).Return(member, nil)
	f.memberRepo.On("Update", mock.Anything, member).Return(nil)

	updated, err := f.service.ChangeMemberRole(context.Background(), f.actor(), member.ID, identity.RoleSalesManager)

	require.NoError(t, err)
	assert.Equal(t, identity.RoleSalesManager, updated.Role)
}

func TestDeactivateMember_SoftDeletesAndRecordsActor(t *testing.T) {
	f := newSettingsFixture(t)
	member := f.employee(t)

	f.memberRepo.On("FindByID", mock.Anything, member.ID).Return(member, nil)
	f.memberRepo.On("Update", mock.Anything, member).Return(nil)

	err := f.service.DeactivateMember(context.Background(), f.actor(), member.ID)

	require.NoError(t, err)
	assert.True(t, member.IsDeleted())
	require.NotNil(t, member.DeletedBy)
	assert.Equal(t, f.admin.ID, *member.DeletedBy)
}

func TestDeactivateMember_SelfDeactivationRejected(t *testing.T) {
	f := newSettingsFixture(t)

	err := f.service.DeactivateMember(context.Background(), f.actor(), f.admin.ID)

	assert.Error(t, err)
	f.memberRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	f.memberRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSetModuleEnabled_TogglesOrganizationModule(t *testing.T) {
	f := newSettingsFixture(t)

	f.orgRepo.On("FindByID", mock.Anything, f.org.ID).Return(f.org, nil)
	f.orgRepo.On("Update", mock.Anything, f.org).Return(nil)

	org, err := f.service.SetModuleEnabled(context.Background(), f.actor(), identity.ModuleHR, true)
	require.NoError(t, err)
	assert.True(t, org.ModuleEnabled(identity.ModuleHR))

	org, err = f.service.SetModuleEnabled(context.Background(), f.actor(), identity.ModuleHR, false)
	require.NoError(t, err)
	assert.False(t, org.ModuleEnabled(identity.ModuleHR))
}

func TestSetModuleEnabled_RejectsUnknownModule(t *testing.T) {
	f := newSettingsFixture(t)

	f.orgRepo.On("FindByID", mock.Anything, f.org.ID).Return(f.org, nil)

	_, err := f.service.SetModuleEnabled(context.Background(), f.actor(), identity.Module("BOGUS"), false)

	assert.Error(t, err)
	f.orgRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSetModuleEnabled_ConcurrentUpdateConflictPropagates(t *testing.T) {
	f := newSettingsFixture(t)

	f.orgRepo.On("FindByID", mock.Anything, f.org.ID).Return(f.org, nil)
	f.orgRepo.On("Update", mock.Anything, f.org).Return(shared.ErrConcurrencyConflict)

	_, err := f.service.SetModuleEnabled(context.Background(), f.actor(), identity.ModuleHR, true)

	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestRenameOrganization_UpdatesName(t *testing.T) {
	f := newSettingsFixture(t)

	f.orgRepo.On("FindByID", mock.Anything, f.org.ID).Return(f.org, nil)
	f.orgRepo.On("Update", mock.Anything, f.org).Return(nil)

	org, err := f.service.RenameOrganization(context.Background(), f.actor(), "Acme Traders")

	require.NoError(t, err)
	assert.Equal(t, "Acme Traders", org.Name)
}

func TestCompleteOnboarding_IsIdempotent(t *testing.T) {
	f := newSettingsFixture(t)

	f.orgRepo.On("FindByID", mock.Anything, f.org.ID).Return(f.org, nil)
	f.orgRepo.On("Update", mock.Anything, f.org).Return(nil).Once()

	org, err := f.service.CompleteOnboarding(context.Background(), f.actor())
	require.NoError(t, err)
	assert.True(t, org.OnboardingComplete)

	// Second call sees the completed flag and writes nothing
	_, err = f.service.CompleteOnboarding(context.Background(), f.actor())
	require.NoError(t, err)
	f.orgRepo.AssertNumberOfCalls(t, "Update", 1)
}

func TestListMembers_ReturnsActiveMembers(t *testing.T) {
	f := newSettingsFixture(t)
	member := f.employee(t)

	f.memberRepo.On("FindActiveByOrganization", mock.Anything, f.org.ID).
		Return([]*identity.Member{f.admin, member}, nil)

	members, err := f.service.ListMembers(context.Background(), f.actor())

	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestListMembers_LookupFailurePropagates(t *testing.T) {
	f := newSettingsFixture(t)

	f.memberRepo.On("FindActiveByOrganization", mock.Anything, f.org.ID).
		Return(nil, assert.AnError)

	_, err := f.service.ListMembers(context.Background(), f.actor())

	assert.Error(t, err)
}
