package handler

import (
	"encoding/json"
	"strconv"
	"time"

	appaudit "github.com/biashara/backend/internal/application/audit"
	"github.com/biashara/backend/internal/domain/audit"
	"github.com/biashara/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditHandler exposes read access to the audit trail
type AuditHandler struct {
	BaseHandler
	recorder *appaudit.Recorder
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(recorder *appaudit.Recorder) *AuditHandler {
	return &AuditHandler{recorder: recorder}
}

// AuditRecordResponse is one audit trail entry
type AuditRecordResponse struct {
	ID         string         `json:"id"`
	ActorID    *string        `json:"actor_id,omitempty"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	OldValues  json.RawMessage `json:"old_values,omitempty"`
	NewValues  json.RawMessage `json:"new_values,omitempty"`
	ClientIP   string         `json:"client_ip,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// List returns the organization's audit records, newest first
func (h *AuditHandler) List(c *gin.Context) {
	accessCtx := middleware.GetAccessContext(c)
	if accessCtx == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	filter := audit.Filter{
		EntityType: c.Query("entity_type"),
	}
	if v := c.Query("actor_id"); v != "" {
		actorID, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid actor_id")
			return
		}
		filter.ActorID = &actorID
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			h.BadRequest(c, "Invalid limit")
			return
		}
		filter.Limit = limit
	}
	if v := c.Query("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			h.BadRequest(c, "Invalid offset")
			return
		}
		filter.Offset = offset
	}

	records, err := h.recorder.List(c.Request.Context(), accessCtx.OrgID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	items := make([]AuditRecordResponse, 0, len(records))
	for _, record := range records {
		item := AuditRecordResponse{
			ID:         record.ID.String(),
			Action:     string(record.Action),
			EntityType: record.EntityType,
			EntityID:   record.EntityID,
			OldValues:  json.RawMessage(record.OldValues),
			NewValues:  json.RawMessage(record.NewValues),
			ClientIP:   record.ClientIP,
			UserAgent:  record.UserAgent,
			CreatedAt:  record.CreatedAt,
		}
		if record.ActorID != nil {
			actorID := record.ActorID.String()
			item.ActorID = &actorID
		}
		items = append(items, item)
	}
	h.Success(c, items)
}
