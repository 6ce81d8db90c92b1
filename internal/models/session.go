package models

import (
	"slices"
	"time"
)

// Session is the per-request principal plus the small amount of UI state
// that follows a user between requests.
type Session struct {
	UserID          string    `json:"userId"`
	Name            string    `json:"name"`
	Role            string    `json:"role"`
	Permissions     []string  `json:"permissions"`
	LeaveDialogOpen bool      `json:"leaveDialogOpen"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Can reports whether the session holds perm. No permissions means no
// access.
func (s *Session) Can(perm string) bool {
	if s == nil {
		return false
	}
	return slices.Contains(s.Permissions, perm)
}

func (s *Session) IsManager() bool {
	if s == nil {
		return false
	}
	return s.Role == RoleAdmin || s.Role == RoleEmployeeManager
}

// SessionState is the persisted part of a session.
type SessionState struct {
	UserID          string    `json:"user_id"`
	LeaveDialogOpen bool      `json:"leave_dialog_open"`
	UpdatedAt       time.Time `json:"updated_at"`
}
