// Package redis provides the Redis-backed key-value store for shared deployments
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alchemorsel/pantry/internal/infrastructure/config"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// KVStore implements outbound.KeyValueStore on Redis strings
type KVStore struct {
	client        redis.UniversalClient
	prefix        string
	maxValueBytes int
	logger        *zap.Logger
}

// NewKVStore creates a Redis key-value store. Every key is namespaced with prefix.
// Values larger than maxValueBytes are rejected as quota failures; zero disables the limit.
func NewKVStore(client redis.UniversalClient, prefix string, maxValueBytes int, logger *zap.Logger) *KVStore {
	return &KVStore{
		client:        client,
		prefix:        prefix,
		maxValueBytes: maxValueBytes,
		logger:        logger.Named("redis-kv-store"),
	}
}

// NewClient creates a Redis client from configuration, in cluster mode when enabled
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) redis.UniversalClient {
	opts := &redis.UniversalOptions{
		Addrs:        []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Password:     cfg.Password,
		DB:           cfg.Database,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Configure cluster mode if enabled
	if cfg.EnableCluster && len(cfg.ClusterNodes) > 0 {
		opts.Addrs = cfg.ClusterNodes
		logger.Info("Redis cluster mode enabled", zap.Strings("nodes", cfg.ClusterNodes))
	}

	return redis.NewUniversalClient(opts)
}

var _ outbound.KeyValueStore = (*KVStore)(nil)

func (s *KVStore) key(key string) string {
	return s.prefix + key
}

// Get retrieves the value stored under key
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, outbound.ErrKeyNotFound
		}
		s.logger.Debug("Redis get failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, nil
}

// Set stores value under key without expiration
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	if s.maxValueBytes > 0 && len(value) > s.maxValueBytes {
		return fmt.Errorf("%w: value of %d bytes exceeds limit of %d", outbound.ErrQuotaExceeded, len(value), s.maxValueBytes)
	}

	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		// maxmemory reached with a noeviction policy
		if strings.HasPrefix(err.Error(), "OOM") {
			s.logger.Warn("Redis is out of memory", zap.String("key", key), zap.Int("size", len(value)))
			return fmt.Errorf("%w: %v", outbound.ErrQuotaExceeded, err)
		}
		s.logger.Error("Redis set failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

// Delete removes a key
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		s.logger.Error("Redis delete failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// Ping checks the connection
func (s *KVStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (s *KVStore) Close() error {
	return s.client.Close()
}
