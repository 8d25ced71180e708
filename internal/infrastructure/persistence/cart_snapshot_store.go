package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vitrina/backend/internal/infrastructure/persistence/models"
)

// GormSnapshotStore implements cart.SnapshotStore on a SQL table
type GormSnapshotStore struct {
	db *gorm.DB
}

// NewGormSnapshotStore creates a new GormSnapshotStore
func NewGormSnapshotStore(db *gorm.DB) *GormSnapshotStore {
	return &GormSnapshotStore{db: db}
}

// Get returns the stored payload for key
func (s *GormSnapshotStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var model models.CartSnapshotModel
	err := s.db.WithContext(ctx).Where("snapshot_key = ?", key).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cart snapshot: %w", err)
	}
	return []byte(model.Payload), true, nil
}

// Set stores value under key, replacing any previous payload
func (s *GormSnapshotStore) Set(ctx context.Context, key string, value []byte) error {
	model := &models.CartSnapshotModel{
		Key:       key,
		Payload:   string(value),
		UpdatedAt: time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "snapshot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to write cart snapshot: %w", err)
	}
	return nil
}

// Ping checks the underlying connection
func (s *GormSnapshotStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
