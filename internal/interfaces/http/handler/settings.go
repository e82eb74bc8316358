package handler

import (
	"errors"

	appidentity "github.com/biashara/backend/internal/application/identity"
	"github.com/biashara/backend/internal/domain/identity"
	"github.com/biashara/backend/internal/domain/shared"
	"github.com/biashara/backend/internal/interfaces/http/dto"
	"github.com/biashara/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SettingsHandler exposes the administrative surface of an organization:
// module toggles, member permissions and lifecycle, onboarding. All routes
// run behind the settings capability gate.
type SettingsHandler struct {
	BaseHandler
	settingsService *appidentity.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *appidentity.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// ListMembers returns the active members of the caller's organization
func (h *SettingsHandler) ListMembers(c *gin.Context) {
	mc, ok := h.mutationContext(c)
	if !ok {
		return
	}

	members, err := h.settingsService.ListMembers(c.Request.Context(), mc)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	resp := make([]dto.MemberResponse, 0, len(members))
	for _, member := range members {
		resp = append(resp, toMemberResponse(member))
	}
	h.Success(c, resp)
}

// UpdateMemberModules replaces a member's allowed module set
func (h *SettingsHandler) UpdateMemberModules(c *gin.Context) {
	mc, ok := h.mutationContext(c)
	if !ok {
		return
	}
	memberID, ok := h.memberParam(c)
	if !ok {
		return
	}

	var req dto.UpdateMemberModulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	modules := make([]identity.Module, 0, len(req.Modules))
	for _, m := range req.Modules {
		modules = append(modules, identity.Module(m))
	}

	member, err := h.settingsService.SetMemberModules(c.Request.Context(), mc, memberID, modules)
	if err != nil {
		h.handleSettingsError(c, err)
		return
	}
	h.Success(c, toMemberResponse(member))
}

// UpdateMemberRole changes a member's role
func (h *SettingsHandler) UpdateMemberRole(c *gin.Context) {
	mc, ok := h.mutationContext(c)
	if !ok {
		return
	}
	memberID, ok := h.memberParam(c)
	if !ok {
		return
	}

	var req dto.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	member, err := h.settingsService.ChangeMemberRole(c.Request.Context(), mc, memberID, identity.Role(req.Role))
	if err != nil {
		h.handleSettingsError(c, err)
		return
	}
	h.Success(c, toMemberResponse(member))
}

// DeactivateMember soft-deletes a member
func (h *SettingsHandler) DeactivateMember(c *gin.Context) {
	mc, ok := h.mutationContext(c)
	if !ok {
		return
	}
	memberID, ok := h.memberParam(c)
	if !ok {
		return
	}

	if err := h.settingsService.DeactivateMember(c.Request.Context(), mc, memberID); err != nil {
		h.handleSettingsError(c, err)
		return
	}
	h.NoContent(c)
}

// ToggleModule enables or disables an organization module
func (h *SettingsHandler) ToggleModule(c *gin.Context) {
	mc, ok := h.mutationContext(c)
	if !ok {
		return
	}

	module := identity.Module(c.Param("module"))
	if !module.IsValid() {
		h.BadRequest(c, "Unknown module")
		return
	}

	var req dto.ToggleModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	org, err := h.settingsService.SetModuleEnabled(c.Request.Context(), mc, module, *req.Enabled)
	if err != nil {
		h.handleSettingsError(c, err)
		return
	}
	h.Success(c, toOrganizationResponse(org))
}

// RenameOrganization updates the organization's display name
func (h *SettingsHandler) RenameOrganization(c *gin.Context) {
	mc, ok := h.mutationContext(c)
	if !ok {
		return
	}

	var req dto.RenameOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	org, err := h.settingsService.RenameOrganization(c.Request.Context(), mc, req.Name)
	if err != nil {
		h.handleSettingsError(c, err)
		return
	}
	h.Success(c, toOrganizationResponse(org))
}

// CompleteOnboarding marks the organization as fully set up
func (h *SettingsHandler) CompleteOnboarding(c *gin.Context) {
	mc, ok := h.mutationContext(c)
	if !ok {
		return
	}

	org, err := h.settingsService.CompleteOnboarding(c.Request.Context(), mc)
	if err != nil {
		h.handleSettingsError(c, err)
		return
	}
	h.Success(c, toOrganizationResponse(org))
}

// mutationContext builds the service-layer actor context from what the gate
// and meta middleware stored
func (h *SettingsHandler) mutationContext(c *gin.Context) (appidentity.MutationContext, bool) {
	accessCtx := middleware.GetAccessContext(c)
	if accessCtx == nil {
		h.Unauthorized(c, "Authentication required")
		return appidentity.MutationContext{}, false
	}
	return appidentity.MutationContext{
		Actor:     *accessCtx,
		ClientIP:  middleware.GetClientIP(c),
		UserAgent: middleware.GetUserAgent(c),
	}, true
}

// memberParam parses the member id path parameter
func (h *SettingsHandler) memberParam(c *gin.Context) (uuid.UUID, bool) {
	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid member ID")
		return uuid.Nil, false
	}
	return memberID, true
}

// handleSettingsError maps service errors, folding the repository sentinels
// that HandleDomainError does not cover
func (h *SettingsHandler) handleSettingsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		h.NotFound(c, "Member not found")
	case errors.Is(err, shared.ErrConcurrencyConflict):
		h.ErrorWithCode(c, dto.ErrCodeConcurrencyConflict, "The record was modified concurrently, retry")
	default:
		h.HandleDomainError(c, err)
	}
}

func toMemberResponse(member *identity.Member) dto.MemberResponse {
	modules := member.Modules()
	names := make([]string, 0, len(modules))
	for _, m := range modules {
		names = append(names, m.String())
	}
	return dto.MemberResponse{
		ID:             member.ID.String(),
		ExternalUserID: member.ExternalUserID,
		Role:           member.Role.String(),
		AllowedModules: names,
		CreatedAt:      member.CreatedAt,
		UpdatedAt:      member.UpdatedAt,
	}
}

func toOrganizationResponse(org *identity.Organization) dto.OrganizationResponse {
	modules := org.Modules()
	names := make([]string, 0, len(modules))
	for _, m := range modules {
		names = append(names, m.String())
	}
	return dto.OrganizationResponse{
		ID:                 org.ID.String(),
		Name:               org.Name,
		Slug:               org.Slug,
		EnabledModules:     names,
		OnboardingComplete: org.OnboardingComplete,
	}
}
