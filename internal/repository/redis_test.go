package repository

import (
	"context"
	"testing"
	"time"

	"resortdesk/internal/config"
	"resortdesk/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSessionStore(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := NewRedisClient(config.RedisConfig{Address: s.Addr()})
	defer client.Close()

	repo := NewRedisSessionStore(client, time.Hour)
	ctx := context.Background()

	t.Run("SetAndGetState", func(t *testing.T) {
		state := &models.SessionState{UserID: "emp-1", LeaveDialogOpen: true}
		require.NoError(t, repo.SetState(ctx, state))

		got, err := repo.GetState(ctx, "emp-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "emp-1", got.UserID)
		assert.True(t, got.LeaveDialogOpen)
		assert.Equal(t, time.Hour, s.TTL(sessionKeyPrefix+"emp-1"))
	})

	t.Run("GetNonExistentState", func(t *testing.T) {
		got, err := repo.GetState(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("CorruptState", func(t *testing.T) {
		require.NoError(t, s.Set(sessionKeyPrefix+"bad", "{not json"))
		_, err := repo.GetState(ctx, "bad")
		assert.Error(t, err)
	})

	t.Run("ClearState", func(t *testing.T) {
		require.NoError(t, repo.SetState(ctx, &models.SessionState{UserID: "emp-2"}))
		require.NoError(t, repo.ClearState(ctx, "emp-2"))

		got, err := repo.GetState(ctx, "emp-2")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		key := "login:a@b.com"
		window := time.Second

		allowed, err := repo.CheckRateLimit(ctx, key, 2, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, key, 2, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, key, 2, window)
		require.NoError(t, err)
		assert.False(t, allowed)

		s.FastForward(window + time.Millisecond)

		allowed, err = repo.CheckRateLimit(ctx, key, 2, window)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("NilClient", func(t *testing.T) {
		repo := NewRedisSessionStore(nil, time.Hour)
		_, err := repo.GetState(ctx, "x")
		assert.ErrorContains(t, err, "redis client is nil")
		assert.Error(t, repo.SetState(ctx, &models.SessionState{UserID: "x"}))
		assert.Error(t, repo.ClearState(ctx, "x"))
		_, err = repo.CheckRateLimit(ctx, "x", 1, time.Second)
		assert.Error(t, err)
		assert.Error(t, Ping(ctx, nil))
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, Ping(ctx, client))
	})

	t.Run("ServerDown", func(t *testing.T) {
		s.Close()
		_, err := repo.GetState(ctx, "emp-1")
		assert.Error(t, err)
	})

	t.Run("Close", func(t *testing.T) {
		assert.NoError(t, Close(client))
		assert.NoError(t, Close(nil))
	})
}
