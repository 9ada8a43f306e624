package redis

import (
	"context"
	"os"
	"testing"

	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// newTestStore connects to the Redis named by PANTRY_TEST_REDIS_ADDR under a unique prefix
func newTestStore(t *testing.T, maxValueBytes int) *KVStore {
	t.Helper()

	addr := os.Getenv("PANTRY_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PANTRY_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	store := NewKVStore(client, "pantry-test:"+uuid.NewString()+":", maxValueBytes, zaptest.NewLogger(t))
	require.NoError(t, store.Ping(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestKVStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 0)

	_, err := store.Get(ctx, "pantry")
	assert.ErrorIs(t, err, outbound.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "pantry", []byte(`{"home":[]}`)))
	value, err := store.Get(ctx, "pantry")
	require.NoError(t, err)
	assert.Equal(t, `{"home":[]}`, string(value))

	require.NoError(t, store.Delete(ctx, "pantry"))
	_, err = store.Get(ctx, "pantry")
	assert.ErrorIs(t, err, outbound.ErrKeyNotFound)
}

func TestKVStore_Quota(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 8)

	err := store.Set(ctx, "pantry", []byte("way too large"))

	assert.ErrorIs(t, err, outbound.ErrQuotaExceeded)
}
