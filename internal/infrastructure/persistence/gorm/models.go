// Package gorm provides GORM model definitions and the GORM-backed key-value store
package gorm

import "time"

// KVEntryModel represents one stored key in the key-value table
type KVEntryModel struct {
	Key       string `gorm:"column:storage_key;type:varchar(255);primaryKey"`
	Value     string `gorm:"type:text;not null"`
	Size      int    `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (KVEntryModel) TableName() string {
	return "kv_entries"
}
