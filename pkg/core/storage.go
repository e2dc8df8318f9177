package core

import "context"

// StateStore is the durable persistence layer for job records. It backs
// deduplication and crash recovery; records are never deleted by the engine.
type StateStore interface {
	// Migrate creates the necessary tables.
	Migrate(ctx context.Context) error

	// Upsert atomically inserts or replaces one record.
	Upsert(ctx context.Context, record *JobRecord) error

	// Get retrieves a record by its identifier, or nil when absent.
	Get(ctx context.Context, id string) (*JobRecord, error)

	// GetByRemoteID retrieves a record by the service-assigned identifier,
	// or nil when absent.
	GetByRemoteID(ctx context.Context, remoteID string) (*JobRecord, error)

	// FindByFingerprint returns the live (non-terminal) record matching a
	// spec fingerprint, or nil when no live record exists.
	FindByFingerprint(ctx context.Context, fingerprint string) (*JobRecord, error)

	// ListActive returns all non-terminal records, oldest first.
	ListActive(ctx context.Context) ([]*JobRecord, error)
}
