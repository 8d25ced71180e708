//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) RedisConfig {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return RedisConfig{Host: host, Port: port.Int()}
}

func TestRedisSnapshotStore_RoundTrip(t *testing.T) {
	cfg := startRedis(t)
	store, err := NewRedisSnapshotStore(cfg, "test:", 0)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	_, ok, err := store.Get(ctx, "s1:carrito")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "s1:carrito", []byte(`[{"id":"A1"}]`)))
	val, ok, err := store.Get(ctx, "s1:carrito")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"id":"A1"}]`, string(val))

	raw, err := store.client.Get(ctx, "test:s1:carrito").Result()
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}

func TestRedisSnapshotStore_TTL(t *testing.T) {
	cfg := startRedis(t)
	store, err := NewRedisSnapshotStore(cfg, "", time.Hour)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", []byte("[]")))

	ttl, err := store.client.TTL(ctx, DefaultKeyPrefix+"k").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)
}
