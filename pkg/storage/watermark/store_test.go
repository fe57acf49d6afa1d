package watermark

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/flowbaker/hubspot-executor/pkg/domain"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() domain.WatermarkKey {
	return domain.WatermarkKey{
		IntegrationType: "hubspot",
		WorkspaceID:     "ws-1",
		WorkflowID:      "wf-" + xid.New().String(),
		TriggerID:       "trigger-1",
	}
}

// exerciseStore runs the behaviour every store must share.
func exerciseStore(t *testing.T, store domain.WatermarkStore) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, ok, err := store.Get(ctx, testKey())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("put then get", func(t *testing.T) {
		key := testKey()

		require.NoError(t, store.Put(ctx, key, 1700000000001))

		value, ok, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(1700000000001), value)
	})

	t.Run("never moves backwards", func(t *testing.T) {
		key := testKey()

		require.NoError(t, store.Put(ctx, key, 1700000000002))
		require.NoError(t, store.Put(ctx, key, 1700000000001))

		value, _, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, int64(1700000000002), value)
	})

	t.Run("ids containing the separator stay apart", func(t *testing.T) {
		base := testKey()
		first := base
		first.WorkflowID = base.WorkflowID + ":a"
		first.TriggerID = "b"
		second := base
		second.TriggerID = "a:b"

		require.NoError(t, store.Put(ctx, first, 1700000000003))

		_, ok, err := store.Get(ctx, second)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete resets", func(t *testing.T) {
		key := testKey()

		require.NoError(t, store.Put(ctx, key, 1700000000002))
		require.NoError(t, store.Delete(ctx, key))

		_, ok, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, store.Put(ctx, key, 5))

		value, _, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, int64(5), value)
	})

	t.Run("keys are isolated", func(t *testing.T) {
		first, second := testKey(), testKey()

		require.NoError(t, store.Put(ctx, first, 10))
		require.NoError(t, store.Put(ctx, second, 20))

		value, _, err := store.Get(ctx, first)
		require.NoError(t, err)
		assert.Equal(t, int64(10), value)
	})

	t.Run("concurrent puts keep the maximum", func(t *testing.T) {
		key := testKey()

		var wg sync.WaitGroup
		for i := int64(1); i <= 20; i++ {
			wg.Add(1)
			go func(value int64) {
				defer wg.Done()
				assert.NoError(t, store.Put(ctx, key, value))
			}(i)
		}
		wg.Wait()

		value, _, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, int64(20), value)
	})
}

func openFromEnv(t *testing.T, driver Driver, envVar string) domain.WatermarkStore {
	t.Helper()

	uri := os.Getenv(envVar)
	if uri == "" {
		t.Skipf("%s not set", envVar)
	}

	store, err := Open(context.Background(), Options{Driver: driver, URI: uri, Namespace: "hubspot_watermarks_test"})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = store.Close(context.Background())
	})

	return store
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	exerciseStore(t, openFromEnv(t, DriverRedis, "HUBSPOT_EXECUTOR_TEST_REDIS_URI"))
}

func TestPostgresStore(t *testing.T) {
	exerciseStore(t, openFromEnv(t, DriverPostgres, "HUBSPOT_EXECUTOR_TEST_POSTGRES_URI"))
}

func TestMongoStore(t *testing.T) {
	exerciseStore(t, openFromEnv(t, DriverMongo, "HUBSPOT_EXECUTOR_TEST_MONGO_URI"))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "etcd"})
	assert.Error(t, err)
}
