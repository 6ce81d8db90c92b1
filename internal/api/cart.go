package api

import (
	"net/http"

	"resortdesk/internal/models"
	"resortdesk/internal/validation"

	"github.com/go-chi/chi/v5"
)

func (s *HTTPServer) handleListCart(w http.ResponseWriter, r *http.Request, _ *models.Session) {
	items, err := s.svc.Cart.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *HTTPServer) handleCartTotal(w http.ResponseWriter, r *http.Request, _ *models.Session) {
	total, err := s.svc.Cart.Total(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, total)
}

func (s *HTTPServer) handleAddCartItem(w http.ResponseWriter, r *http.Request, _ *models.Session) {
	var in models.CartItemInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := s.svc.Cart.Add(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *HTTPServer) handleUpdateCartItem(w http.ResponseWriter, r *http.Request, _ *models.Session) {
	var body struct {
		Quantity *int `json:"quantity"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Quantity == nil {
		s.writeServiceError(w, r, validation.Errors{"quantity": "Quantity is required"})
		return
	}
	item, err := s.svc.Cart.UpdateQuantity(r.Context(), chi.URLParam(r, "itemId"), *body.Quantity)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *HTTPServer) handleRemoveCartItem(w http.ResponseWriter, r *http.Request, _ *models.Session) {
	if err := s.svc.Cart.Remove(r.Context(), chi.URLParam(r, "itemId")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Item removed"})
}

func (s *HTTPServer) handleClearCart(w http.ResponseWriter, r *http.Request, _ *models.Session) {
	removed, err := s.svc.Cart.Clear(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}
