package api

import (
	"net/http"

	"resortdesk/internal/models"
)

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.svc.Auth == nil {
		writeError(w, http.StatusNotFound, "login is not enabled")
		return
	}
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := s.svc.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleGetSession(w http.ResponseWriter, _ *http.Request, sess *models.Session) {
	writeJSON(w, http.StatusOK, sess)
}

func (s *HTTPServer) handleLeaveDialog(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	var body struct {
		Open *bool `json:"open"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Open == nil {
		writeError(w, http.StatusBadRequest, "open is required")
		return
	}
	if s.svc.Sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "session store is not configured")
		return
	}
	updated, err := s.svc.Sessions.SetLeaveDialog(r.Context(), sess, *body.Open)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
