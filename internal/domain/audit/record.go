package audit

import (
	"encoding/json"
	"time"

	"github.com/biashara/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Action is the kind of mutation an audit record describes
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
	ActionRead   Action = "READ"
)

// IsValid returns true if the action kind is known
func (a Action) IsValid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionRead:
		return true
	default:
		return false
	}
}

// Record is one immutable append-only audit entry. Once written it is never
// mutated or deleted by application code; there are deliberately no update
// methods on this type.
type Record struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID  `gorm:"type:uuid;not null;index"`
	ActorID        *uuid.UUID `gorm:"type:uuid;index"` // nil for system actions (e.g. webhook reconciliation)
	Action         Action     `gorm:"type:varchar(10);not null"`
	EntityType     string     `gorm:"type:varchar(100);not null;index"`
	EntityID       string     `gorm:"type:varchar(100);not null"`
	OldValues      string     `gorm:"type:text"` // JSON snapshot, empty when not applicable
	NewValues      string     `gorm:"type:text"`
	ClientIP       string     `gorm:"type:varchar(64)"`
	UserAgent      string     `gorm:"type:varchar(512)"`
	CreatedAt      time.Time  `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Record) TableName() string {
	return "audit_records"
}

// NewRecord builds an audit record for a completed mutation. Snapshots are
// JSON-encoded here so the append is a single flat row insert.
func NewRecord(orgID uuid.UUID, actorID *uuid.UUID, action Action, entityType, entityID string, oldValues, newValues map[string]any) (*Record, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION", "Organization ID cannot be empty")
	}
	if !action.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACTION", "Unknown audit action")
	}
	if entityType == "" {
		return nil, shared.NewDomainError("INVALID_ENTITY_TYPE", "Entity type cannot be empty")
	}

	return &Record{
		ID:             uuid.New(),
		OrganizationID: orgID,
		ActorID:        actorID,
		Action:         action,
		EntityType:     entityType,
		EntityID:       entityID,
		OldValues:      encodeSnapshot(oldValues),
		NewValues:      encodeSnapshot(newValues),
		CreatedAt:      time.Now(),
	}, nil
}

// WithRequestMeta attaches client metadata captured from the inbound request
func (r *Record) WithRequestMeta(clientIP, userAgent string) *Record {
	if len(userAgent) > 512 {
		userAgent = userAgent[:512]
	}
	r.ClientIP = clientIP
	r.UserAgent = userAgent
	return r
}

func encodeSnapshot(values map[string]any) string {
	if len(values) == 0 {
		return ""
	}
	bytes, err := json.Marshal(values)
	if err != nil {
		return ""
	}
	return string(bytes)
}
