package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemorySnapshotStore_GetMissing(t *testing.T) {
	store := NewInMemorySnapshotStore()

	val, ok, err := store.Get(context.Background(), "s1:carrito")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestInMemorySnapshotStore_SetOverwrites(t *testing.T) {
	store := NewInMemorySnapshotStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte(`[1]`)))
	require.NoError(t, store.Set(ctx, "k", []byte(`[2]`)))

	val, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[2]`, string(val))
	assert.Equal(t, 1, store.Len())
}

func TestInMemorySnapshotStore_CopiesValues(t *testing.T) {
	store := NewInMemorySnapshotStore()
	ctx := context.Background()

	in := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", in))
	in[0] = 'x'

	out, _, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))

	out[1] = 'y'
	again, _, _ := store.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestInMemorySnapshotStore_Concurrent(t *testing.T) {
	store := NewInMemorySnapshotStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%10)
			_ = store.Set(ctx, key, []byte("v"))
			_, _, _ = store.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, store.Len())
	assert.NoError(t, store.Ping(ctx))
}
