package handler

import (
	"net/http"

	"bihar-bazaar/internal/auth"
	"bihar-bazaar/internal/service"

	"github.com/rs/zerolog"
)

type phoneRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type otpRequest struct {
	OTP string `json:"otp"`
}

type digitRequest struct {
	Index int    `json:"index"`
	Digit string `json:"digit"`
}

// AuthResponse is the sign-in flow state, plus the outcome once the user is signed in.
type AuthResponse struct {
	auth.View
	Result *service.AuthResult `json:"result,omitempty"`
}

// AuthHandler handles phone sign-in HTTP requests.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("handler", "auth").Logger(),
	}
}

// Get handles GET /api/auth.
func (h *AuthHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{View: h.service.View(s)})
}

// SubmitPhone handles POST /api/auth/phone.
func (h *AuthHandler) SubmitPhone(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}
	var req phoneRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	view, err := h.service.SubmitPhone(r.Context(), s, req.PhoneNumber)
	if err != nil {
		respondError(w, err, "failed to check phone number", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{View: view})
}

// SubmitName handles POST /api/auth/name.
func (h *AuthHandler) SubmitName(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}
	var req nameRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	view, err := h.service.SubmitName(r.Context(), s, req.Name)
	if err != nil {
		respondError(w, err, "failed to send OTP", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{View: view})
}

// SubmitOTP handles POST /api/auth/otp.
func (h *AuthHandler) SubmitOTP(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}
	var req otpRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	result, view, err := h.service.SubmitOTP(r.Context(), s, req.OTP)
	if err != nil {
		respondError(w, err, "failed to verify OTP", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{View: view, Result: result})
}

// EnterDigit handles POST /api/auth/otp/digit. Filling the last cell verifies the code.
func (h *AuthHandler) EnterDigit(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}
	var req digitRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	result, view, err := h.service.EnterDigit(r.Context(), s, req.Index, req.Digit)
	if err != nil {
		respondError(w, err, "failed to verify OTP", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{View: view, Result: result})
}

// Resend handles POST /api/auth/resend.
func (h *AuthHandler) Resend(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	view, err := h.service.Resend(r.Context(), s)
	if err != nil {
		respondError(w, err, "failed to send OTP", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{View: view})
}

// Reset handles POST /api/auth/reset.
func (h *AuthHandler) Reset(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{View: h.service.Reset(r.Context(), s)})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.Logout(r.Context(), s); err != nil {
		respondError(w, err, "failed to log out", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
