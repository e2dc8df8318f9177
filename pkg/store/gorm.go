// Package store provides the GORM-backed durable state store.
package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/batchkit/batchkit/pkg/core"
)

// terminalStatuses filters live records in queries.
var terminalStatuses = []core.JobStatus{core.StatusSucceeded, core.StatusFailed}

// GormStore implements core.StateStore using GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed state store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates the necessary tables.
func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&core.JobRecord{})
}

// Upsert inserts or replaces the record in one atomic write. The unique
// index on remote_id rejects a second record claiming the same remote job.
func (s *GormStore) Upsert(ctx context.Context, record *core.JobRecord) error {
	record.LastError = core.SanitizeErrorMessage(record.LastError)

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(record).Error

	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return core.NewInvariantError("upsert", core.ErrDuplicateRemoteID)
	}
	return err
}

// Get retrieves a record by ID, or nil when absent.
func (s *GormStore) Get(ctx context.Context, id string) (*core.JobRecord, error) {
	var record core.JobRecord
	err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetByRemoteID retrieves a record by the service-assigned identifier, or
// nil when absent.
func (s *GormStore) GetByRemoteID(ctx context.Context, remoteID string) (*core.JobRecord, error) {
	var record core.JobRecord
	err := s.db.WithContext(ctx).First(&record, "remote_id = ?", remoteID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByFingerprint returns the live record for a spec fingerprint, or nil
// when every matching record is terminal. Terminal records never suppress a
// resubmission.
func (s *GormStore) FindByFingerprint(ctx context.Context, fingerprint string) (*core.JobRecord, error) {
	var record core.JobRecord
	err := s.db.WithContext(ctx).
		Where("fingerprint = ?", fingerprint).
		Where("status NOT IN ?", terminalStatuses).
		Order("created_at ASC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListActive returns all non-terminal records, oldest first. This is the
// recovery query after a restart.
func (s *GormStore) ListActive(ctx context.Context) ([]*core.JobRecord, error) {
	var records []*core.JobRecord
	err := s.db.WithContext(ctx).
		Where("status NOT IN ?", terminalStatuses).
		Order("created_at ASC").
		Find(&records).Error
	return records, err
}
