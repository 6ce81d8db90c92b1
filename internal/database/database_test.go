package database

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := NewDB(":memory:", &logger)
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
}

func TestNewDB_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")

	db, err := NewDB(dbPath, nil)
	require.NoError(t, err)
	require.NoError(t, db.AddCartItem(context.Background(), newCartItem("towel", 1)))
	require.NoError(t, db.Close())

	db, err = NewDB(dbPath, nil)
	require.NoError(t, err)
	defer db.Close()

	items, err := db.ListCartItems(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestDB_Ping(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, db.PingContext(context.Background()))
}

func TestDB_ErrorPaths(t *testing.T) {
	logger := zerolog.New(io.Discard)
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	db.Close()

	ctx := context.Background()

	_, err = db.ListReservations(ctx)
	assert.Error(t, err)

	err = db.CreateReservationWithLock(ctx, newReservation("RES-1", "2025-01-01", "10:00", "11:00"), nil)
	assert.Error(t, err)

	_, err = db.CountEmployees(ctx)
	assert.Error(t, err)

	_, err = db.ClearCart(ctx)
	assert.Error(t, err)
}
