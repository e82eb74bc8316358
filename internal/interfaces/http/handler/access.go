package handler

import (
	appidentity "github.com/biashara/backend/internal/application/identity"
	"github.com/biashara/backend/internal/domain/identity"
	"github.com/biashara/backend/internal/interfaces/http/dto"
	"github.com/biashara/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AccessHandler exposes read-only access evaluation. Clients use it to decide
// which navigation entries to render; enforcement still happens in the gate
// middleware on every protected route.
type AccessHandler struct {
	BaseHandler
	accessService *appidentity.AccessService
}

// NewAccessHandler creates a new AccessHandler
func NewAccessHandler(accessService *appidentity.AccessService) *AccessHandler {
	return &AccessHandler{accessService: accessService}
}

// CheckModule evaluates the caller's access to one module
func (h *AccessHandler) CheckModule(c *gin.Context) {
	resolution := middleware.GetResolution(c)
	sessionIdentity := middleware.GetSessionIdentity(c)
	if resolution == nil || sessionIdentity == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	module := identity.Module(c.Param("module"))
	if !module.IsValid() {
		h.BadRequest(c, "Unknown module")
		return
	}

	check, err := h.accessService.CheckModule(
		c.Request.Context(),
		resolution.Organization.ID,
		sessionIdentity.ExternalUserID,
		module,
	)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	resp := dto.ModuleAccessResponse{
		Module:  module.String(),
		Allowed: check.Decision.Allowed,
	}
	// pending_setup is the only deny state the caller may distinguish; every
	// other reason stays in logs
	if !check.Decision.Allowed && check.Decision.Reason == identity.DenyReasonPendingSetup {
		resp.Reason = string(check.Decision.Reason)
	}
	h.Success(c, resp)
}

// ListModules evaluates every module in one snapshot pass
func (h *AccessHandler) ListModules(c *gin.Context) {
	resolution := middleware.GetResolution(c)
	sessionIdentity := middleware.GetSessionIdentity(c)
	if resolution == nil || sessionIdentity == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	snapshot, err := h.accessService.Snapshot(
		c.Request.Context(),
		resolution.Organization.ID,
		sessionIdentity.ExternalUserID,
	)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	modules := make([]dto.ModuleAccessResponse, 0, len(identity.AllModules()))
	for _, module := range identity.AllModules() {
		decision := identity.EvaluateModule(snapshot, module)
		entry := dto.ModuleAccessResponse{
			Module:  module.String(),
			Allowed: decision.Allowed,
		}
		if !decision.Allowed && decision.Reason == identity.DenyReasonPendingSetup {
			entry.Reason = string(decision.Reason)
		}
		modules = append(modules, entry)
	}
	h.Success(c, modules)
}
