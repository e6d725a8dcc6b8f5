package handler

import (
	"net/http"

	"bihar-bazaar/internal/model"
	"bihar-bazaar/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type wishlistRequest struct {
	ProductID string `json:"productId"`
}

// WishlistHandler handles wishlist HTTP requests.
type WishlistHandler struct {
	service service.WishlistService
	logger  zerolog.Logger
}

func NewWishlistHandler(service service.WishlistService, logger zerolog.Logger) *WishlistHandler {
	return &WishlistHandler{
		service: service,
		logger:  logger.With().Str("handler", "wishlist").Logger(),
	}
}

func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	items, err := h.service.List(r.Context(), s)
	if err != nil {
		respondError(w, err, "failed to load wishlist", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}
	var req wishlistRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "productId is required", h.logger)
		return
	}

	items, err := h.service.Add(r.Context(), s, req.ProductID)
	if err != nil {
		respondError(w, err, "failed to add to wishlist", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	items, err := h.service.Remove(r.Context(), s, chi.URLParam(r, "productId"))
	if err != nil {
		respondError(w, err, "failed to remove from wishlist", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
