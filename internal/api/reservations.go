package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"resortdesk/internal/models"
	"resortdesk/internal/report"

	"github.com/go-chi/chi/v5"
)

func (s *HTTPServer) handleListReservations(w http.ResponseWriter, r *http.Request, _ *models.Session) {
	list, err := s.svc.Reservations.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *HTTPServer) handleCountReservations(w http.ResponseWriter, r *http.Request, _ *models.Session) {
	n, err := s.svc.Reservations.Count(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"reservationCount": n})
}

func (s *HTTPServer) handleGetReservation(w http.ResponseWriter, r *http.Request, _ *models.Session) {
	res, err := s.svc.Reservations.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	var in models.ReservationInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.svc.Reservations.Create(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *HTTPServer) handleCheckAvailability(w http.ResponseWriter, r *http.Request) {
	var in models.ReservationInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := s.svc.Reservations.CheckAvailability(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *HTTPServer) handleUpdateReservation(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	var in models.ReservationInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.svc.Reservations.Update(r.Context(), chi.URLParam(r, "id"), in, sess.UserID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) handleDeleteReservation(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	if err := s.svc.Reservations.Delete(r.Context(), chi.URLParam(r, "id"), sess.UserID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Reservation deleted"})
}

// handleReport renders into memory first so a failed export still gets a
// JSON error instead of a truncated file.
func (s *HTTPServer) handleReport(w http.ResponseWriter, r *http.Request, _ *models.Session) {
	table, err := s.svc.Reservations.Report(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if title := strings.TrimSpace(r.URL.Query().Get("title")); title != "" {
		table.Title = title
	}

	var renderer report.Renderer = report.XLSXRenderer{}
	var buf bytes.Buffer
	if err := renderer.Render(&buf, table); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", table.FileName+renderer.Extension()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
