package dto

import "time"

// UpdateMemberModulesRequest replaces a member's allowed module set
type UpdateMemberModulesRequest struct {
	Modules []string `json:"modules" binding:"required,dive,oneof=FINANCE CRM HR INVENTORY SALES SETTINGS"`
}

// UpdateMemberRoleRequest changes a member's role
type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin accountant hr_manager sales_manager inventory_manager employee"`
}

// ToggleModuleRequest enables or disables an organization module.
// Enabled is a pointer so an explicit false passes required validation.
type ToggleModuleRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// RenameOrganizationRequest updates the organization's display name
type RenameOrganizationRequest struct {
	Name string `json:"name" binding:"required,max=200"`
}

// MemberResponse is the transport view of a member
type MemberResponse struct {
	ID             string    `json:"id"`
	ExternalUserID string    `json:"external_user_id"`
	Role           string    `json:"role"`
	AllowedModules []string  `json:"allowed_modules"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// OrganizationResponse is the transport view of an organization
type OrganizationResponse struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Slug               string   `json:"slug"`
	EnabledModules     []string `json:"enabled_modules"`
	OnboardingComplete bool     `json:"onboarding_complete"`
}
