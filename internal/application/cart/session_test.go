package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vitrina/backend/internal/domain/cart"
)

func TestSessionManager_Open(t *testing.T) {
	t.Run("empty id creates a new session", func(t *testing.T) {
		m := NewSessionManager(newMapStore(), nil, 0)
		s, err := m.Open(context.Background(), "")
		require.NoError(t, err)
		assert.NotEmpty(t, s.ID)
		assert.Equal(t, 1, m.Len())
	})

	t.Run("same id returns the same session", func(t *testing.T) {
		m := NewSessionManager(newMapStore(), nil, 0)
		a, err := m.Open(context.Background(), "abc")
		require.NoError(t, err)
		b, err := m.Open(context.Background(), "abc")
		require.NoError(t, err)
		assert.Same(t, a, b)
	})

	t.Run("hydrates the stored cart", func(t *testing.T) {
		store := newMapStore()
		_ = store.Set(context.Background(), "abc:carrito",
			[]byte(`[{"id":"A1","nombre":"Widget","precio":9.5,"cantidad":3}]`))

		m := NewSessionManager(store, nil, 0)
		s, err := m.Open(context.Background(), "abc")
		require.NoError(t, err)

		_ = s.Do(func(l *cart.Ledger) error {
			assert.Equal(t, 3, l.Totals().ItemCount)
			return nil
		})
	})

	t.Run("corrupt snapshot opens an empty cart", func(t *testing.T) {
		store := newMapStore()
		_ = store.Set(context.Background(), "abc:carrito", []byte(`{broken`))

		m := NewSessionManager(store, nil, 0)
		s, err := m.Open(context.Background(), "abc")
		require.NoError(t, err)
		_ = s.Do(func(l *cart.Ledger) error {
			assert.True(t, l.IsEmpty())
			return nil
		})
	})

	t.Run("store read failure is an error", func(t *testing.T) {
		store := new(MockSnapshotStore)
		store.On("Get", mock.Anything, "abc:carrito").Return(nil, false, errors.New("redis down"))

		m := NewSessionManager(store, nil, 0)
		_, err := m.Open(context.Background(), "abc")
		assert.Error(t, err)
		assert.Equal(t, 0, m.Len())
	})
}

func TestSessionManager_Sweep(t *testing.T) {
	store := newMapStore()
	m := NewSessionManager(store, nil, time.Minute)
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return current }

	_, err := m.Open(context.Background(), "old")
	require.NoError(t, err)

	current = current.Add(45 * time.Second)
	_, err = m.Open(context.Background(), "fresh")
	require.NoError(t, err)

	current = current.Add(30 * time.Second)
	assert.Equal(t, 1, m.Sweep())

	_, ok := m.lookup("old")
	assert.False(t, ok)
	_, ok = m.lookup("fresh")
	assert.True(t, ok)
}

func TestSessionManager_EvictedCartSurvives(t *testing.T) {
	store := newMapStore()
	m := NewSessionManager(store, nil, time.Minute)
	current := time.Now()
	m.now = func() time.Time { return current }

	svc := NewService(store, nil)
	s, err := m.Open(context.Background(), "visitor")
	require.NoError(t, err)
	loadWidget(s)
	_, err = svc.AddItem(context.Background(), s, "A1", 2)
	require.NoError(t, err)

	current = current.Add(2 * time.Minute)
	require.Equal(t, 1, m.Sweep())

	reopened, err := m.Open(context.Background(), "visitor")
	require.NoError(t, err)
	assert.NotSame(t, s, reopened)
	assert.Equal(t, 2, svc.Totals(reopened).ItemCount)
}

func TestSessionManager_BusySessionDoesNotBlockOthers(t *testing.T) {
	m := NewSessionManager(newMapStore(), nil, time.Minute)
	a, err := m.Open(context.Background(), "visitor-a")
	require.NoError(t, err)

	release := make(chan struct{})
	held := make(chan struct{})
	go func() {
		_ = a.Exclusive(func() error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	// a second request from visitor-a arrives while its catalog load runs
	reopened := make(chan struct{})
	go func() {
		_, _ = m.Open(context.Background(), "visitor-a")
		close(reopened)
	}()

	opened := make(chan error, 1)
	go func() {
		_, err := m.Open(context.Background(), "visitor-b")
		opened <- err
	}()

	select {
	case err := <-opened:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("visitor-b could not open a session while visitor-a was busy")
	}

	select {
	case <-reopened:
	case <-time.After(2 * time.Second):
		t.Fatal("reopening a busy session waited on its lock")
	}
	assert.Equal(t, 2, m.Len())
}

type blockingStore struct {
	cart.SnapshotStore
	entered chan struct{}
	release chan struct{}
}

func (s *blockingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == cart.SnapshotKey("slow") {
		close(s.entered)
		<-s.release
	}
	return s.SnapshotStore.Get(ctx, key)
}

func TestSessionManager_SlowSnapshotReadDoesNotBlockOthers(t *testing.T) {
	store := &blockingStore{SnapshotStore: newMapStore(), entered: make(chan struct{}), release: make(chan struct{})}
	m := NewSessionManager(store, nil, time.Minute)

	slow := make(chan error, 1)
	go func() {
		_, err := m.Open(context.Background(), "slow")
		slow <- err
	}()
	<-store.entered

	_, err := m.Open(context.Background(), "fast")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())

	close(store.release)
	require.NoError(t, <-slow)
	assert.Equal(t, 2, m.Len())
}

func TestSessionManager_StartSweeperStops(t *testing.T) {
	m := NewSessionManager(newMapStore(), nil, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m.StartSweeper(ctx, time.Millisecond)
	m.Stop()
	m.Stop()
}
