package middleware

import (
	"net/http"
	"strings"

	appidentity "github.com/biashara/backend/internal/application/identity"
	"github.com/biashara/backend/internal/infrastructure/auth"
	"github.com/biashara/backend/internal/infrastructure/logger"
	"github.com/biashara/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by the session middleware
const (
	// SessionIdentityContextKey holds the verified session identity
	SessionIdentityContextKey = "session_identity"
	// ResolutionContextKey holds the tenant resolution result
	ResolutionContextKey = "tenant_resolution"
)

// SessionConfig holds session middleware configuration
type SessionConfig struct {
	Verifier     *auth.SessionVerifier
	Organization *appidentity.OrganizationService
	Logger       *zap.Logger
	// CookieName is checked when no Authorization header is present
	CookieName string
}

// Session returns middleware that verifies the identity provider's session
// token and resolves the external org to a local organization. Requests
// without a valid session are rejected before any authorization evaluation;
// "no session" is a distinct condition from "no permission".
func Session(verifier *auth.SessionVerifier, orgService *appidentity.OrganizationService, log *zap.Logger) gin.HandlerFunc {
	return SessionWithConfig(SessionConfig{
		Verifier:     verifier,
		Organization: orgService,
		Logger:       log,
		CookieName:   "__session",
	})
}

// SessionWithConfig returns a session middleware with custom configuration
func SessionWithConfig(cfg SessionConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		token := extractToken(c, cfg.CookieName)
		if token == "" {
			log.Info("request without session",
				zap.String("request_id", GetRequestID(c)),
				zap.String("path", c.Request.URL.Path),
				zap.String("deny_reason", "no_session"),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", GetRequestID(c)))
			return
		}

		sessionIdentity, err := cfg.Verifier.Verify(token)
		if err != nil {
			code := dto.ErrCodeTokenInvalid
			if err == auth.ErrExpiredToken {
				code = dto.ErrCodeTokenExpired
			}
			log.Info("session verification failed",
				zap.String("request_id", GetRequestID(c)),
				zap.String("deny_reason", "no_session"),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(code, "Invalid session", GetRequestID(c)))
			return
		}

		resolution, err := cfg.Organization.ResolveOrCreate(c.Request.Context(), appidentity.ResolveInput{
			ExternalOrgID:  sessionIdentity.ExternalOrgID,
			ExternalUserID: sessionIdentity.ExternalUserID,
			NameHint:       sessionIdentity.OrgName,
			SlugHint:       sessionIdentity.OrgSlug,
		})
		if err != nil {
			log.Error("tenant resolution failed",
				zap.String("request_id", GetRequestID(c)),
				zap.String("external_org_id", sessionIdentity.ExternalOrgID),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, "Failed to resolve organization", GetRequestID(c)))
			return
		}

		c.Set(SessionIdentityContextKey, sessionIdentity)
		c.Set(ResolutionContextKey, resolution)

		// Enrich the request context so downstream logs carry org identity
		ctx, _ := logger.WithOrgID(c.Request.Context(), logger.FromContext(c.Request.Context()), resolution.Organization.ID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetSessionIdentity retrieves the verified session identity from gin context
func GetSessionIdentity(c *gin.Context) *auth.SessionIdentity {
	if v, exists := c.Get(SessionIdentityContextKey); exists {
		if identity, ok := v.(*auth.SessionIdentity); ok {
			return identity
		}
	}
	return nil
}

// GetResolution retrieves the tenant resolution from gin context
func GetResolution(c *gin.Context) *appidentity.Resolution {
	if v, exists := c.Get(ResolutionContextKey); exists {
		if resolution, ok := v.(*appidentity.Resolution); ok {
			return resolution
		}
	}
	return nil
}

// extractToken pulls the session token from the Authorization header or the
// session cookie
func extractToken(c *gin.Context, cookieName string) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookieName != "" {
		if cookie, err := c.Cookie(cookieName); err == nil {
			return cookie
		}
	}
	return ""
}
