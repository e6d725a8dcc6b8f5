package handler

import (
	"context"
	"net/http"

	"bihar-bazaar/internal/model"
	"bihar-bazaar/internal/service"
	"bihar-bazaar/internal/session"

	"github.com/rs/zerolog"
)

type selectAddressRequest struct {
	AddressID string `json:"addressId"`
}

type paymentMethodRequest struct {
	Method string `json:"method"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type couponRequest struct {
	Code string `json:"code"`
}

// CheckoutHandler handles checkout step and order submission requests.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// Begin handles POST /api/checkout.
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	view, err := h.service.Begin(r.Context(), s)
	if err != nil {
		respondError(w, err, "failed to start checkout", h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// Get handles GET /api/checkout.
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.viewAction(w, r, "failed to load checkout", h.service.View)
}

// Discard handles DELETE /api/checkout.
func (h *CheckoutHandler) Discard(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.Discard(r.Context(), s); err != nil {
		respondError(w, err, "failed to discard checkout", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectAddress handles PUT /api/checkout/address.
func (h *CheckoutHandler) SelectAddress(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}
	var req selectAddressRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.AddressID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "addressId is required", h.logger)
		return
	}

	view, err := h.service.SelectAddress(r.Context(), s, req.AddressID)
	if err != nil {
		respondError(w, err, "failed to select address", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SetPaymentMethod handles PUT /api/checkout/payment-method.
func (h *CheckoutHandler) SetPaymentMethod(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}
	var req paymentMethodRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	view, err := h.service.SetPaymentMethod(r.Context(), s, req.Method)
	if err != nil {
		respondError(w, err, "failed to set payment method", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SetNotes handles PUT /api/checkout/notes.
func (h *CheckoutHandler) SetNotes(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}
	var req notesRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	view, err := h.service.SetDeliveryNotes(r.Context(), s, req.Notes)
	if err != nil {
		respondError(w, err, "failed to save delivery notes", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ApplyCoupon handles POST /api/checkout/coupon.
func (h *CheckoutHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}
	var req couponRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	view, err := h.service.ApplyCoupon(r.Context(), s, req.Code)
	if err != nil {
		respondError(w, err, "failed to apply coupon", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// RemoveCoupon handles DELETE /api/checkout/coupon.
func (h *CheckoutHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	h.viewAction(w, r, "failed to remove coupon", h.service.RemoveCoupon)
}

// Next handles POST /api/checkout/next.
func (h *CheckoutHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.viewAction(w, r, "failed to continue checkout", h.service.Next)
}

// Back handles POST /api/checkout/back.
func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.viewAction(w, r, "failed to go back", h.service.Back)
}

// PlaceOrder handles POST /api/checkout/place-order.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.service.PlaceOrder(r.Context(), s)
	if err != nil {
		respondError(w, err, "failed to place order", h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// VerifyPayment handles POST /api/checkout/payment/verify.
func (h *CheckoutHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}
	var cb model.PaymentCallback
	if !decodeJSON(w, r, &cb, h.logger) {
		return
	}

	result, err := h.service.VerifyPayment(r.Context(), s, cb)
	if err != nil {
		respondError(w, err, "failed to verify payment", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *CheckoutHandler) viewAction(
	w http.ResponseWriter,
	r *http.Request,
	fallback string,
	action func(ctx context.Context, s *session.Session) (*service.CheckoutView, error),
) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	view, err := action(r.Context(), s)
	if err != nil {
		respondError(w, err, fallback, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
