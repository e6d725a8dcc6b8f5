package handler

import (
	"net/http"

	"bihar-bazaar/internal/model"
	"bihar-bazaar/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// List handles GET /api/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	orders, err := h.service.List(r.Context(), s)
	if err != nil {
		respondError(w, err, "failed to get orders", h.logger)
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// GetByID handles GET /api/orders/{id}.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	order, err := h.service.GetByID(r.Context(), s, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err, "failed to retrieve order", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// Cancel handles POST /api/orders/{id}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	order, err := h.service.Cancel(r.Context(), s, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err, "failed to cancel order", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
