package router

import (
	"github.com/biashara/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// WebhookRoutes registers payment provider webhook endpoints. They are public
// by design: provider deliveries authenticate with signatures, not sessions.
type WebhookRoutes struct {
	Handler *handler.WebhookHandler
}

// RegisterRoutes implements RouteRegistrar
func (r WebhookRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	webhooks := rg.Group("/webhooks")
	webhooks.POST("/flutterwave", r.Handler.HandleFlutterwave)
	webhooks.POST("/paystack", r.Handler.HandlePaystack)
}

// SystemRoutes registers liveness and info endpoints, also unauthenticated
type SystemRoutes struct {
	Handler *handler.SystemHandler
}

// RegisterRoutes implements RouteRegistrar
func (r SystemRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	system.GET("/health", r.Handler.Health)
	system.GET("/ping", r.Handler.Ping)
	system.GET("/info", r.Handler.GetSystemInfo)
}

// AccessRoutes registers access evaluation endpoints behind the session
// middleware. The gate middleware is not applied here: the point of these
// endpoints is to report the would-be decision, not enforce it.
type AccessRoutes struct {
	Handler *handler.AccessHandler
	Session gin.HandlerFunc
}

// RegisterRoutes implements RouteRegistrar
func (r AccessRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	access := rg.Group("/access")
	access.Use(r.Session)
	access.GET("/modules", r.Handler.ListModules)
	access.GET("/modules/:module", r.Handler.CheckModule)
}

// SettingsRoutes registers the administrative surface. Reads sit behind the
// settings module gate; mutations additionally require the settings write
// capability, which only admins hold.
type SettingsRoutes struct {
	Handler        *handler.SettingsHandler
	Session        gin.HandlerFunc
	Gate           gin.HandlerFunc
	CapabilityGate gin.HandlerFunc
}

// RegisterRoutes implements RouteRegistrar
func (r SettingsRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	settings := rg.Group("/settings")
	settings.Use(r.Session, r.Gate)
	settings.GET("/members", r.Handler.ListMembers)

	mutations := settings.Group("")
	mutations.Use(r.CapabilityGate)
	mutations.PUT("/members/:id/modules", r.Handler.UpdateMemberModules)
	mutations.PUT("/members/:id/role", r.Handler.UpdateMemberRole)
	mutations.DELETE("/members/:id", r.Handler.DeactivateMember)
	mutations.PUT("/modules/:module", r.Handler.ToggleModule)
	mutations.PUT("/organization", r.Handler.RenameOrganization)
	mutations.POST("/onboarding/complete", r.Handler.CompleteOnboarding)
}

// AuditRoutes registers the audit trail endpoint behind the session
// middleware and the settings module gate
type AuditRoutes struct {
	Handler *handler.AuditHandler
	Session gin.HandlerFunc
	Gate    gin.HandlerFunc
}

// RegisterRoutes implements RouteRegistrar
func (r AuditRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	audit := rg.Group("/audit")
	audit.Use(r.Session, r.Gate)
	audit.GET("/records", r.Handler.List)
}
