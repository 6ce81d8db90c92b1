package service

import (
	"context"
	"time"

	"resortdesk/internal/domain"
	"resortdesk/internal/models"

	"github.com/rs/zerolog"
)

// SessionService merges the persisted per-user state into the request
// principal.
type SessionService struct {
	store  domain.SessionStore
	logger *zerolog.Logger
}

func NewSessionService(store domain.SessionStore, logger *zerolog.Logger) *SessionService {
	return &SessionService{store: store, logger: logger}
}

// Load fills the stored fields of sess. A store failure is logged and the
// session continues with defaults.
func (s *SessionService) Load(ctx context.Context, sess *models.Session) *models.Session {
	state, err := s.store.GetState(ctx, sess.UserID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", sess.UserID).Msg("failed to get session state")
		return sess
	}
	if state != nil {
		sess.LeaveDialogOpen = state.LeaveDialogOpen
		sess.UpdatedAt = state.UpdatedAt
	}
	return sess
}

func (s *SessionService) SetLeaveDialog(ctx context.Context, sess *models.Session, open bool) (*models.Session, error) {
	state := &models.SessionState{
		UserID:          sess.UserID,
		LeaveDialogOpen: open,
		UpdatedAt:       time.Now().UTC(),
	}
	if err := s.store.SetState(ctx, state); err != nil {
		return nil, err
	}
	sess.LeaveDialogOpen = open
	sess.UpdatedAt = state.UpdatedAt
	return sess, nil
}

func (s *SessionService) Clear(ctx context.Context, sess *models.Session) error {
	return s.store.ClearState(ctx, sess.UserID)
}
