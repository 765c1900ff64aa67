package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMemoryStore_CreateGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	s, err := store.Create(ctx, "alice", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)
	assert.Equal(t, "alice", s.Username)

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Get(ctx, s.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStore_RequiresUsername(t *testing.T) {
	_, err := NewMemoryStore().Create(context.Background(), "", time.Hour)
	require.Error(t, err)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	s, err := store.Create(ctx, "alice", time.Minute)
	require.NoError(t, err)

	now = now.Add(59 * time.Second)
	_, err = store.Get(ctx, s.ID)
	require.NoError(t, err)

	now = now.Add(time.Second)
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_CreatePrunesExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	_, err := store.Create(ctx, "old", time.Minute)
	require.NoError(t, err)

	now = now.Add(time.Hour)
	_, err = store.Create(ctx, "new", time.Minute)
	require.NoError(t, err)

	assert.Len(t, store.sessions, 1)
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := store.Create(ctx, "user", time.Hour)
			if err != nil {
				t.Errorf("create: %v", err)
				return
			}
			if _, err := store.Get(ctx, s.ID); err != nil {
				t.Errorf("get: %v", err)
			}
			_ = store.Delete(ctx, s.ID)
		}()
	}
	wg.Wait()

	assert.Empty(t, store.sessions)
}
