package badger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lunchtime/internal/common"
	"github.com/ternarybob/lunchtime/internal/interfaces"
)

func openTestDB(t *testing.T, path string) *BadgerDB {
	t.Helper()
	db, err := NewBadgerDB(arbor.NewLogger(), &common.BadgerConfig{Path: path})
	require.NoError(t, err)
	return db
}

func TestKVStorage_SetGet(t *testing.T) {
	db := openTestDB(t, filepath.Join(t.TempDir(), "db"))
	defer db.Close()
	kv := NewKVStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "LunchTimeFavoritesKey", `{"a":"a"}`, "favorites"))

	// Keys are case-insensitive
	got, err := kv.Get(ctx, "lunchtimefavoriteskey")
	require.NoError(t, err)
	assert.Equal(t, `{"a":"a"}`, got)

	pair, err := kv.GetPair(ctx, "LUNCHTIMEFAVORITESKEY")
	require.NoError(t, err)
	assert.Equal(t, "favorites", pair.Description)
	assert.False(t, pair.CreatedAt.IsZero())
}

func TestKVStorage_GetMissing(t *testing.T) {
	db := openTestDB(t, filepath.Join(t.TempDir(), "db"))
	defer db.Close()
	kv := NewKVStorage(db, arbor.NewLogger())

	_, err := kv.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, interfaces.ErrKeyNotFound)

	err = kv.Delete(context.Background(), "nope")
	assert.ErrorIs(t, err, interfaces.ErrKeyNotFound)
}

func TestKVStorage_SetPreservesCreatedAt(t *testing.T) {
	db := openTestDB(t, filepath.Join(t.TempDir(), "db"))
	defer db.Close()
	kv := NewKVStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", "1", ""))
	first, err := kv.GetPair(ctx, "k")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, kv.Set(ctx, "k", "2", ""))
	second, err := kv.GetPair(ctx, "k")
	require.NoError(t, err)

	assert.Equal(t, "2", second.Value)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestKVStorage_DeleteAndList(t *testing.T) {
	db := openTestDB(t, filepath.Join(t.TempDir(), "db"))
	defer db.Close()
	kv := NewKVStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "a", "1", ""))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, kv.Set(ctx, "b", "2", ""))

	pairs, err := kv.List(ctx)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "b", pairs[0].Key, "most recently updated first")

	require.NoError(t, kv.Delete(ctx, "A"))
	pairs, err = kv.List(ctx)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "b", pairs[0].Key)
}

func TestKVStorage_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	ctx := context.Background()

	db := openTestDB(t, path)
	require.NoError(t, NewKVStorage(db, arbor.NewLogger()).Set(ctx, "k", "kept", ""))
	require.NoError(t, db.Close())

	db = openTestDB(t, path)
	defer db.Close()
	got, err := NewKVStorage(db, arbor.NewLogger()).Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "kept", got)
}

func TestNewBadgerDB_ResetOnStartup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	ctx := context.Background()

	db := openTestDB(t, path)
	require.NoError(t, NewKVStorage(db, arbor.NewLogger()).Set(ctx, "k", "v", ""))
	require.NoError(t, db.Close())

	db, err := NewBadgerDB(arbor.NewLogger(), &common.BadgerConfig{Path: path, ResetOnStartup: true})
	require.NoError(t, err)
	defer db.Close()

	_, err = NewKVStorage(db, arbor.NewLogger()).Get(ctx, "k")
	assert.ErrorIs(t, err, interfaces.ErrKeyNotFound)
}

func TestNewBadgerDB_InMemory(t *testing.T) {
	db, err := NewBadgerDB(arbor.NewLogger(), &common.BadgerConfig{InMemory: true})
	require.NoError(t, err)
	defer db.Close()

	kv := NewKVStorage(db, arbor.NewLogger())
	require.NoError(t, kv.Set(context.Background(), "k", "v", ""))
	got, err := kv.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestManager(t *testing.T) {
	manager, err := NewManager(arbor.NewLogger(), &common.BadgerConfig{InMemory: true})
	require.NoError(t, err)

	assert.NotNil(t, manager.KeyValueStorage())
	assert.NoError(t, manager.Close())
}
