package api

import (
	"net/http"
	"strings"

	"resortdesk/internal/models"
	"resortdesk/internal/validation"

	"github.com/go-chi/chi/v5"
)

func (s *HTTPServer) handleEmployeeCount(w http.ResponseWriter, r *http.Request, _ *models.Session) {
	n, err := s.svc.Staff.EmployeeCount(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"employeeCount": n})
}

func (s *HTTPServer) handleAttendanceCount(w http.ResponseWriter, r *http.Request, _ *models.Session) {
	var date models.Date
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		parsed, err := models.ParseDate(raw)
		if err != nil {
			s.writeServiceError(w, r, validation.Errors{"date": "Invalid date"})
			return
		}
		date = parsed
	}
	n, err := s.svc.Staff.AttendanceCount(r.Context(), date)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"attendanceCount": n})
}

func (s *HTTPServer) handleCreateEmployee(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	var in models.EmployeeInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// только админ может создавать других админов
	if in.Role == models.RoleAdmin && sess.Role != models.RoleAdmin {
		writeError(w, http.StatusForbidden, errPermissionDenied.Error())
		return
	}
	emp, err := s.svc.Staff.CreateEmployee(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, emp)
}

func (s *HTTPServer) handleMarkAttendance(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	a, err := s.svc.Staff.MarkAttendance(r.Context(), sess.UserID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *HTTPServer) handleApplyLeave(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	var in models.LeaveInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	leave, err := s.svc.Staff.ApplyLeave(r.Context(), sess.UserID, in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if s.svc.Sessions != nil && sess.LeaveDialogOpen {
		if _, err := s.svc.Sessions.SetLeaveDialog(r.Context(), sess, false); err != nil {
			s.logger.Warn().Err(err).Str("user_id", sess.UserID).Msg("Failed to close leave dialog")
		}
	}
	writeJSON(w, http.StatusCreated, leave)
}

func (s *HTTPServer) handleListLeaves(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	leaves, err := s.svc.Staff.Leaves(r.Context(), sess)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leaves)
}

func (s *HTTPServer) handleDecideLeave(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	leave, err := s.svc.Staff.DecideLeave(r.Context(), chi.URLParam(r, "id"), strings.TrimSpace(body.Status), sess)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leave)
}
