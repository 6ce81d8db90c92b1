package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"resortdesk/internal/models"
	"resortdesk/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct{ *repository.MemorySessionStore }

func (brokenStore) GetState(context.Context, string) (*models.SessionState, error) {
	return nil, errors.New("redis down")
}

func TestSessionService(t *testing.T) {
	s := NewSessionService(repository.NewMemorySessionStore(time.Hour), testLogger())
	ctx := context.Background()

	sess := s.Load(ctx, &models.Session{UserID: "emp-1"})
	assert.False(t, sess.LeaveDialogOpen)

	_, err := s.SetLeaveDialog(ctx, sess, true)
	require.NoError(t, err)

	fresh := s.Load(ctx, &models.Session{UserID: "emp-1"})
	assert.True(t, fresh.LeaveDialogOpen)
	assert.False(t, fresh.UpdatedAt.IsZero())

	other := s.Load(ctx, &models.Session{UserID: "emp-2"})
	assert.False(t, other.LeaveDialogOpen, "state is per user")

	require.NoError(t, s.Clear(ctx, fresh))
	assert.False(t, s.Load(ctx, &models.Session{UserID: "emp-1"}).LeaveDialogOpen)
}

func TestSessionService_StoreFailure(t *testing.T) {
	s := NewSessionService(brokenStore{repository.NewMemorySessionStore(time.Hour)}, testLogger())
	sess := s.Load(context.Background(), &models.Session{UserID: "emp-1"})
	assert.Equal(t, "emp-1", sess.UserID)
}
