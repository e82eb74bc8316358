package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrganization(t *testing.T) {
	org, err := NewOrganization("org_2abc", "Acme Traders", "")

	require.NoError(t, err)
	assert.Equal(t, "org_2abc", org.ExternalID)
	assert.Equal(t, "Acme Traders", org.Name)
	assert.Equal(t, "org-2abc", org.Slug)
	assert.False(t, org.OnboardingComplete)
	assert.ElementsMatch(t, []Module{ModuleFinance, ModuleCRM, ModuleSales, ModuleSettings}, org.Modules())
	assert.Len(t, org.GetDomainEvents(), 1)
}

func TestNewOrganization_DefaultsNameToExternalID(t *testing.T) {
	org, err := NewOrganization("org_xyz", "", "")

	require.NoError(t, err)
	assert.Equal(t, "org_xyz", org.Name)
}

func TestNewOrganization_EmptyExternalID(t *testing.T) {
	_, err := NewOrganization("", "Acme", "")
	assert.Error(t, err)
}

func TestNewOrganization_SlugHintIsSlugified(t *testing.T) {
	org, err := NewOrganization("org_1", "Acme", "Acme Traders Ltd.")

	require.NoError(t, err)
	assert.Equal(t, "acme-traders-ltd", org.Slug)
}

func TestOrganization_EnableDisableModule(t *testing.T) {
	org, err := NewOrganization("org_1", "Acme", "acme")
	require.NoError(t, err)

	require.NoError(t, org.EnableModule(ModuleHR))
	assert.True(t, org.ModuleEnabled(ModuleHR))

	// Enabling twice is a no-op
	require.NoError(t, org.EnableModule(ModuleHR))
	count := 0
	for _, m := range org.Modules() {
		if m == ModuleHR {
			count++
		}
	}
	assert.Equal(t, 1, count)

	org.DisableModule(ModuleHR)
	assert.False(t, org.ModuleEnabled(ModuleHR))
}

func TestOrganization_EnableUnknownModule(t *testing.T) {
	org, err := NewOrganization("org_1", "Acme", "acme")
	require.NoError(t, err)

	assert.Error(t, org.EnableModule(Module("BOGUS")))
}

func TestOrganization_CompleteOnboarding(t *testing.T) {
	org, err := NewOrganization("org_1", "Acme", "acme")
	require.NoError(t, err)
	version := org.Version

	org.CompleteOnboarding()
	assert.True(t, org.OnboardingComplete)
	assert.Equal(t, version+1, org.Version)

	// Idempotent
	org.CompleteOnboarding()
	assert.Equal(t, version+1, org.Version)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme Traders", "acme-traders"},
		{"  Acme  ", "acme"},
		{"org_2abcDEF", "org-2abcdef"},
		{"--a--b--", "a-b"},
		{"!!!", ""},
		{"shop.example.com", "shop-example-com"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}

func TestDedupeSlug(t *testing.T) {
	first := DedupeSlug("acme")
	second := DedupeSlug("acme")

	assert.True(t, strings.HasPrefix(first, "acme-"))
	assert.NotEqual(t, first, second)
	// The suffixed slug survives re-slugification unchanged
	assert.Equal(t, first, Slugify(first))
}
