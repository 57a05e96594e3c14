package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *mockStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func TestFailoverStore(t *testing.T) {
	primary := new(mockStore)
	fallback := NewMemoryStore()
	logger := zerolog.New(io.Discard)
	store := NewFailoverStore(primary, fallback, &logger)
	ctx := context.Background()

	t.Run("PrimarySuccessMirrors", func(t *testing.T) {
		primary.On("Get", ctx, "bookings").Return([]byte(`[1]`), true, nil).Once()

		got, ok, err := store.Get(ctx, "bookings")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `[1]`, string(got))

		mirrored, ok, _ := fallback.Get(ctx, "bookings")
		assert.True(t, ok)
		assert.Equal(t, `[1]`, string(mirrored))
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailServesFallback", func(t *testing.T) {
		primary.On("Get", ctx, "bookings").Return(nil, false, errors.New("connection refused")).Once()

		got, ok, err := store.Get(ctx, "bookings")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `[1]`, string(got))
		assert.True(t, store.isDown.Load())
		primary.AssertExpectations(t)
	})

	t.Run("WritesWhileDownGoToFallback", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "services", []byte(`[]`)))

		got, ok, _ := fallback.Get(ctx, "services")
		assert.True(t, ok)
		assert.Equal(t, `[]`, string(got))
		assert.Contains(t, store.dirty, "services")
		primary.AssertNotCalled(t, "Set", ctx, "services", mock.Anything)
	})

	t.Run("RecoveryReplaysDirtyKeys", func(t *testing.T) {
		store.mu.Lock()
		store.lastCheck = time.Now().Add(-2 * time.Minute)
		store.mu.Unlock()

		primary.On("Set", ctx, "services", []byte(`[]`)).Return(nil).Once()
		primary.On("Get", ctx, healthKey).Return(nil, false, nil).Once()
		primary.On("Get", ctx, "services").Return([]byte(`[]`), true, nil).Once()

		_, ok, err := store.Get(ctx, "services")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.False(t, store.isDown.Load())
		assert.Empty(t, store.dirty)
		primary.AssertExpectations(t)
	})

	t.Run("NoRecoveryBeforeInterval", func(t *testing.T) {
		primary.On("Delete", ctx, "day_blocks").Return(errors.New("timeout")).Once()
		require.NoError(t, store.Delete(ctx, "day_blocks"))
		assert.True(t, store.isDown.Load())

		// Within the recovery interval the primary is not touched.
		_, ok, err := store.Get(ctx, "day_blocks")
		require.NoError(t, err)
		assert.False(t, ok)
		primary.AssertExpectations(t)
	})
}
