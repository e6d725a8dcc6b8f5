package handler

import (
	"net/http"

	"bihar-bazaar/internal/model"
	"bihar-bazaar/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartHandler handles cart HTTP requests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	view, err := h.service.View(r.Context(), s)
	if err != nil {
		respondError(w, err, "failed to load cart", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// AddItem handles POST /api/cart/items. Quantity defaults to one.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}
	var req addItemRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "productId is required", h.logger)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	view, err := h.service.AddItem(r.Context(), s, req.ProductID, req.Quantity)
	if err != nil {
		respondError(w, err, "failed to add item to cart", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// UpdateItem handles PATCH /api/cart/items/{productId}. Zero removes the line.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}
	var req quantityRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	view, err := h.service.UpdateQuantity(r.Context(), s, chi.URLParam(r, "productId"), req.Quantity)
	if err != nil {
		respondError(w, err, "failed to update cart", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// RemoveItem handles DELETE /api/cart/items/{productId}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	view, err := h.service.RemoveItem(r.Context(), s, chi.URLParam(r, "productId"))
	if err != nil {
		respondError(w, err, "failed to remove item from cart", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	view, err := h.service.Clear(r.Context(), s)
	if err != nil {
		respondError(w, err, "failed to clear cart", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
