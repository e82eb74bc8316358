package middleware

import (
	"net/http"

	appidentity "github.com/biashara/backend/internal/application/identity"
	"github.com/biashara/backend/internal/domain/identity"
	"github.com/biashara/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccessContextKey holds the authorized actor context after an allow
const AccessContextKey = "access_context"

// GateConfig holds access gate middleware configuration
type GateConfig struct {
	Access *appidentity.AccessService
	Logger *zap.Logger
	// RedirectOnDeny switches denials from a JSON 403 to a 302 redirect,
	// matching browser-facing deployments
	RedirectOnDeny bool
	// DenyRedirectURL is the uniform safe view every denial diverts to
	DenyRedirectURL string
	// OnboardingURL is where pending-setup members are sent instead
	OnboardingURL string
}

// RequireModule returns middleware enforcing module access with JSON denials
func RequireModule(access *appidentity.AccessService, log *zap.Logger, module identity.Module) gin.HandlerFunc {
	return RequireModuleWithConfig(GateConfig{Access: access, Logger: log}, module)
}

// RequireModuleWithConfig returns the module access gate. Runs after the
// session middleware: it loads a single consistent permission snapshot,
// evaluates it, and either installs the AccessContext or performs the deny
// action. The specific deny reason is logged, never revealed to the caller;
// every denied response looks the same except pending_setup, which routes
// into onboarding.
func RequireModuleWithConfig(cfg GateConfig, module identity.Module) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		resolution := GetResolution(c)
		sessionIdentity := GetSessionIdentity(c)
		if resolution == nil || sessionIdentity == nil {
			denyModule(c, cfg, log, module, identity.DenyReasonNoSession)
			return
		}

		check, err := cfg.Access.CheckModule(
			c.Request.Context(),
			resolution.Organization.ID,
			sessionIdentity.ExternalUserID,
			module,
		)
		if err != nil {
			log.Error("module access check failed",
				zap.String("request_id", GetRequestID(c)),
				zap.String("module", module.String()),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, "Access check failed", GetRequestID(c)))
			return
		}

		if !check.Decision.Allowed {
			denyModule(c, cfg, log, module, check.Decision.Reason)
			return
		}

		c.Set(AccessContextKey, check.Context)
		c.Next()
	}
}

// RequireCapability returns middleware enforcing a fine-grained capability.
// Like the module gate it runs after the session middleware.
func RequireCapability(access *appidentity.AccessService, log *zap.Logger, capability identity.Capability) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		resolution := GetResolution(c)
		sessionIdentity := GetSessionIdentity(c)
		if resolution == nil || sessionIdentity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", GetRequestID(c)))
			return
		}

		allowed, accessCtx, err := access.CheckCapability(
			c.Request.Context(),
			resolution.Organization.ID,
			sessionIdentity.ExternalUserID,
			capability,
		)
		if err != nil {
			log.Error("capability check failed",
				zap.String("request_id", GetRequestID(c)),
				zap.String("capability", capability.String()),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, "Access check failed", GetRequestID(c)))
			return
		}

		if !allowed {
			log.Info("capability denied",
				zap.String("request_id", GetRequestID(c)),
				zap.String("org_id", resolution.Organization.ID.String()),
				zap.String("capability", capability.String()),
			)
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Access denied", GetRequestID(c)))
			return
		}

		c.Set(AccessContextKey, accessCtx)
		c.Next()
	}
}

// GetAccessContext retrieves the authorized actor context from gin context
func GetAccessContext(c *gin.Context) *appidentity.AccessContext {
	if v, exists := c.Get(AccessContextKey); exists {
		if accessCtx, ok := v.(*appidentity.AccessContext); ok {
			return accessCtx
		}
	}
	return nil
}

// denyModule performs the configured deny action. The reason stays in logs.
// A missing session is answered as unauthenticated; every other denial is a
// uniform 403, except pending_setup which routes into onboarding.
func denyModule(c *gin.Context, cfg GateConfig, log *zap.Logger, module identity.Module, reason identity.DenyReason) {
	fields := []zap.Field{
		zap.String("request_id", GetRequestID(c)),
		zap.String("path", c.Request.URL.Path),
		zap.String("module", module.String()),
		zap.String("deny_reason", string(reason)),
	}
	if resolution := GetResolution(c); resolution != nil {
		fields = append(fields, zap.String("org_id", resolution.Organization.ID.String()))
	}
	log.Info("module access denied", fields...)

	if cfg.RedirectOnDeny {
		target := cfg.DenyRedirectURL
		if reason == identity.DenyReasonPendingSetup && cfg.OnboardingURL != "" {
			target = cfg.OnboardingURL
		}
		if target == "" {
			target = "/"
		}
		c.Redirect(http.StatusFound, target)
		c.Abort()
		return
	}

	if reason == identity.DenyReasonNoSession {
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", GetRequestID(c)))
		return
	}

	if reason == identity.DenyReasonPendingSetup {
		c.AbortWithStatusJSON(http.StatusForbidden, dto.Response{
			Success: false,
			Data:    dto.ModuleAccessResponse{Module: module.String(), Allowed: false, Reason: string(identity.DenyReasonPendingSetup)},
			Error:   &dto.ErrorInfo{Code: dto.ErrCodeForbidden, Message: "Workspace setup incomplete", RequestID: GetRequestID(c)},
		})
		return
	}

	c.AbortWithStatusJSON(http.StatusForbidden,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Access denied", GetRequestID(c)))
}
