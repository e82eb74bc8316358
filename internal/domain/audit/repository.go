package audit

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows audit record queries
type Filter struct {
	EntityType string
	ActorID    *uuid.UUID
	Limit      int
	Offset     int
}

// Repository defines the interface for audit record persistence. There are
// deliberately no update or delete operations: the log is append-only.
type Repository interface {
	// Append durably inserts one record as a single atomic row insert
	Append(ctx context.Context, record *Record) error

	// FindByOrganization lists records for an organization, newest first
	FindByOrganization(ctx context.Context, orgID uuid.UUID, filter Filter) ([]Record, error)
}
