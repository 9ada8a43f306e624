package gorm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pgDiskFull is the PostgreSQL SQLSTATE for "disk_full"
const pgDiskFull = "53100"

// KVStore implements outbound.KeyValueStore on a single GORM table
type KVStore struct {
	db            *gorm.DB
	maxValueBytes int
	logger        *zap.Logger
}

// NewKVStore creates a GORM key-value store. Values larger than maxValueBytes are
// rejected as quota failures; zero disables the limit.
func NewKVStore(db *gorm.DB, maxValueBytes int, logger *zap.Logger) *KVStore {
	return &KVStore{
		db:            db,
		maxValueBytes: maxValueBytes,
		logger:        logger.Named("gorm-kv-store"),
	}
}

var _ outbound.KeyValueStore = (*KVStore)(nil)

// Get retrieves the value stored under key
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var model KVEntryModel
	result := s.db.WithContext(ctx).First(&model, "storage_key = ?", key)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, outbound.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to read key %q: %w", key, result.Error)
	}
	return []byte(model.Value), nil
}

// Set upserts value under key in a single statement
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	if s.maxValueBytes > 0 && len(value) > s.maxValueBytes {
		return fmt.Errorf("%w: value of %d bytes exceeds limit of %d", outbound.ErrQuotaExceeded, len(value), s.maxValueBytes)
	}

	model := KVEntryModel{
		Key:   key,
		Value: string(value),
		Size:  len(value),
	}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "size", "updated_at"}),
	}).Create(&model)
	if result.Error != nil {
		if isQuotaError(result.Error) {
			s.logger.Warn("Database is full", zap.String("key", key), zap.Int("size", len(value)))
			return fmt.Errorf("%w: %v", outbound.ErrQuotaExceeded, result.Error)
		}
		return fmt.Errorf("failed to write key %q: %w", key, result.Error)
	}
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	result := s.db.WithContext(ctx).Delete(&KVEntryModel{}, "storage_key = ?", key)
	if result.Error != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, result.Error)
	}
	return nil
}

// Ping checks the underlying connection
func (s *KVStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Keys lists stored keys with the given prefix, for example corrupted-data backups
func (s *KVStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	result := s.db.WithContext(ctx).
		Model(&KVEntryModel{}).
		Where("storage_key LIKE ?", prefix+"%").
		Order("storage_key").
		Pluck("storage_key", &keys)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list keys: %w", result.Error)
	}
	return keys, nil
}

func isQuotaError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgDiskFull
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database or disk is full") || strings.Contains(msg, "sqlite_full")
}
