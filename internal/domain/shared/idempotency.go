package shared

import (
	"context"
	"time"
)

// IdempotencyStore stores processed event keys to short-circuit duplicate
// deliveries before they reach the database. It is a fast-path guard only;
// the conditional update on the order row remains the source of truth.
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL.
	// Returns true if the key was newly marked, false if it already existed.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release removes a key so a failed delivery can be retried.
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}
