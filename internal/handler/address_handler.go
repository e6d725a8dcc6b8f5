package handler

import (
	"net/http"

	"bihar-bazaar/internal/model"
	"bihar-bazaar/internal/service"

	"github.com/rs/zerolog"
)

// AddressHandler handles shipping address HTTP requests.
type AddressHandler struct {
	service service.AddressService
	logger  zerolog.Logger
}

func NewAddressHandler(service service.AddressService, logger zerolog.Logger) *AddressHandler {
	return &AddressHandler{
		service: service,
		logger:  logger.With().Str("handler", "address").Logger(),
	}
}

// List handles GET /api/addresses.
func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	addresses, err := h.service.List(r.Context(), s)
	if err != nil {
		respondError(w, err, "failed to get addresses", h.logger)
		return
	}
	if addresses == nil {
		addresses = []model.Address{}
	}
	writeJSON(w, http.StatusOK, addresses)
}

// Create handles POST /api/addresses.
func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}
	var req model.AddressRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	addr, err := h.service.Create(r.Context(), s, req)
	if err != nil {
		respondError(w, err, "failed to save address", h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, addr)
}
