package models

import "time"

// CartSnapshotModel stores one serialized cart per storage key
type CartSnapshotModel struct {
	Key       string    `gorm:"column:snapshot_key;type:varchar(255);primaryKey"`
	Payload   string    `gorm:"column:payload;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName returns the table name for GORM
func (CartSnapshotModel) TableName() string {
	return "cart_snapshots"
}
