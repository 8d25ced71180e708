package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vitrina/backend/internal/infrastructure/cache"
	"github.com/vitrina/backend/internal/infrastructure/config"
	"github.com/vitrina/backend/internal/infrastructure/persistence"
)

func testConfig(driver string) *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{Driver: driver, KeyPrefix: "test:"},
		Redis:   config.RedisConfig{Host: "127.0.0.1", Port: 1},
	}
}

func TestFactory_Memory(t *testing.T) {
	res, err := NewFactory(testConfig("memory")).Create(context.Background())
	require.NoError(t, err)
	defer res.Close()

	assert.Equal(t, "memory", res.Driver)
	assert.False(t, res.Fallback)
	assert.IsType(t, &cache.InMemorySnapshotStore{}, res.Store)
}

func TestFactory_SQLite(t *testing.T) {
	cfg := testConfig("sqlite")
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "carts.db")

	res, err := NewFactory(cfg).Create(context.Background())
	require.NoError(t, err)
	defer res.Close()

	assert.Equal(t, "sqlite", res.Driver)
	assert.IsType(t, &persistence.GormSnapshotStore{}, res.Store)

	ctx := context.Background()
	require.NoError(t, res.Store.Set(ctx, "s1:carrito", []byte(`[]`)))
	val, ok, err := res.Store.Get(ctx, "s1:carrito")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", string(val))
	assert.NoError(t, res.Store.Ping(ctx))
}

func TestFactory_RedisFallback(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	cfg := testConfig("redis")

	res, err := NewFactory(cfg, WithLogger(zap.New(core)), WithInMemoryFallback(true)).Create(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "memory", res.Driver)
	assert.True(t, res.Fallback)
	assert.Equal(t, 1, logs.FilterMessage("Cart storage unavailable, falling back to in-memory store").Len())
}

func TestFactory_RedisNoFallback(t *testing.T) {
	res, err := NewFactory(testConfig("redis"), WithInMemoryFallback(false)).Create(context.Background())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "failed to create redis cart storage")
}

func TestFactory_S3RequiresCredentials(t *testing.T) {
	cfg := testConfig("s3")
	cfg.Storage.S3.Bucket = "carts"

	_, err := NewFactory(cfg).Create(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access key")
}

func TestFactory_UnknownDriver(t *testing.T) {
	_, err := NewFactory(testConfig("mongo")).Create(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported storage driver")
}
