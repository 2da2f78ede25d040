package kvstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-client/pkg/config"
	"github.com/angelmondragon/storefront-client/pkg/migrate"
	redisclient "github.com/angelmondragon/storefront-client/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "cart_u1")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "cart_u1", `[{"_id":"p1","quantity":1}]`))
	got, err := store.Get(ctx, "cart_u1")
	require.NoError(t, err)
	assert.Equal(t, `[{"_id":"p1","quantity":1}]`, got)

	require.NoError(t, store.Set(ctx, "cart_u1", `[]`))
	got, err = store.Get(ctx, "cart_u1")
	require.NoError(t, err)
	assert.Equal(t, `[]`, got)

	require.NoError(t, store.Set(ctx, "cart_u2", `["other"]`))
	require.NoError(t, store.Remove(ctx, "cart_u1"))
	_, err = store.Get(ctx, "cart_u1")
	require.ErrorIs(t, err, ErrNotFound)

	got, err = store.Get(ctx, "cart_u2")
	require.NoError(t, err)
	assert.Equal(t, `["other"]`, got)

	require.NoError(t, store.Remove(ctx, "missing"))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemory()
	exerciseStore(t, store)
	assert.Equal(t, map[string]string{"cart_u2": `["other"]`}, store.Snapshot())
}

func TestMemoryStoreHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemory().Get(ctx, "userId")
	require.ErrorIs(t, err, context.Canceled)
}

func TestSQLStore(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()
	require.NoError(t, migrate.Up(context.Background(), sqlDB, "sqlite3"))

	store := NewSQL(conn)
	store.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	exerciseStore(t, store)
}

func TestRedisStore(t *testing.T) {
	exerciseStore(t, &Redis{client: newFakeRedis()})
}

func TestRedisStorePropagatesBackendErrors(t *testing.T) {
	backend := newFakeRedis()
	backend.err = errors.New("connection reset")
	_, err := (&Redis{client: backend}).Get(context.Background(), "userId")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestOpenMemoryBackend(t *testing.T) {
	backend, err := Open(context.Background(), &config.Config{Storage: config.StorageConfig{Driver: config.StorageDriverMemory}}, nil)
	require.NoError(t, err)
	require.NoError(t, backend.Close())
	exerciseStore(t, backend.Store)
}

func TestOpenSQLBackendMigrates(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: config.StorageDriverSQL},
		DB:      config.DBConfig{Driver: config.DBDriverSQLite, DSN: "file::memory:", MaxOpenConns: 1},
	}
	backend, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer backend.Close()

	require.NoError(t, backend.Pinger.Ping(context.Background()))
	exerciseStore(t, backend.Store)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{Storage: config.StorageConfig{Driver: "tape"}}, nil)
	require.Error(t, err)
}

type fakeRedis struct {
	data map[string]string
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.data[key] = fmt.Sprint(value)
	return nil
}

func (f *fakeRedis) Get(ctx context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.data[key]
	if !ok {
		return "", redisclient.ErrNil
	}
	return v, nil
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) error {
	if f.err != nil {
		return f.err
	}
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeRedis) KVKey(key string) string {
	return "sf:kv:" + key
}
