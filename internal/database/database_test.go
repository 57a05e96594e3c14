package database

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDB_DirectoryCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	logger := zerolog.Nop()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)
	assert.Equal(t, dbPath, db.Path())
}

func TestDB_KeyValue(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	t.Run("Missing", func(t *testing.T) {
		got, ok, err := db.Get(ctx, "bookings")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, db.Set(ctx, "bookings", []byte(`[]`)))
		require.NoError(t, db.Set(ctx, "bookings", []byte(`[{"id":"a"}]`)))

		got, ok, err := db.Get(ctx, "bookings")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `[{"id":"a"}]`, string(got))

		at, ok, err := db.UpdatedAt(ctx, "bookings")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.False(t, at.IsZero())
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, db.Delete(ctx, "bookings"))
		_, ok, err := db.Get(ctx, "bookings")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestDB_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	logger := zerolog.Nop()
	ctx := context.Background()

	db, err := NewDB(path, &logger)
	require.NoError(t, err)
	require.NoError(t, db.Set(ctx, "services", []byte(`[{"name":"Trim"}]`)))
	require.NoError(t, db.Close())

	reopened, err := NewDB(path, &logger)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok, err := reopened.Get(ctx, "services")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"name":"Trim"}]`, string(got))
}

func TestDB_ConcurrentWrites(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	const writers = 10
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, db.Set(ctx, "day_blocks", []byte(`{}`)))
		}()
	}
	wg.Wait()

	got, ok, err := db.Get(ctx, "day_blocks")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{}`, string(got))
}

func TestDB_InMemory(t *testing.T) {
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.PingContext(context.Background()))
	require.NoError(t, db.Set(context.Background(), "k", []byte("v")))
	_, err = os.Stat(":memory:")
	assert.True(t, os.IsNotExist(err))
}
