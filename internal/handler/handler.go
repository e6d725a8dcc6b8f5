package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"bihar-bazaar/internal/backend"
	"bihar-bazaar/internal/model"
	"bihar-bazaar/internal/session"

	"github.com/rs/zerolog"
)

// SignInRedirect is where the client goes once its session has expired.
const SignInRedirect = "/"

var statusByCode = map[string]int{
	model.ErrCodeInvalidJSON:           http.StatusBadRequest,
	model.ErrCodeMissingField:          http.StatusBadRequest,
	model.ErrCodeInvalidCoupon:         http.StatusBadRequest,
	model.ErrCodeInvalidQuantity:       http.StatusBadRequest,
	model.ErrCodeEmptyCart:             http.StatusBadRequest,
	model.ErrCodeInvalidAddress:        http.StatusBadRequest,
	model.ErrCodeInvalidPaymentMethod:  http.StatusBadRequest,
	model.ErrCodeInvalidPhone:          http.StatusBadRequest,
	model.ErrCodeInvalidName:           http.StatusBadRequest,
	model.ErrCodeIncompleteOTP:         http.StatusBadRequest,
	model.ErrCodeInvalidOTPDigit:       http.StatusBadRequest,
	model.ErrCodeInvalidOTP:            http.StatusBadRequest,
	model.ErrCodeProductNotFound:       http.StatusNotFound,
	model.ErrCodeItemNotInCart:         http.StatusNotFound,
	model.ErrCodeAddressNotFound:       http.StatusNotFound,
	model.ErrCodeOrderNotFound:         http.StatusNotFound,
	model.ErrCodeWishlistItemNotFound:  http.StatusNotFound,
	model.ErrCodeNoCheckout:            http.StatusNotFound,
	model.ErrCodeAddressRequired:       http.StatusUnprocessableEntity,
	model.ErrCodeInvalidStep:           http.StatusConflict,
	model.ErrCodeInvalidAuthStep:       http.StatusConflict,
	model.ErrCodeNoPendingPayment:      http.StatusConflict,
	model.ErrCodeOrderNotCancellable:   http.StatusConflict,
	model.ErrCodeCheckoutInconsistency: http.StatusConflict,
	model.ErrCodePaymentPending:        http.StatusConflict,
	model.ErrCodeResendCooldown:        http.StatusTooManyRequests,
	model.ErrCodeNotAuthenticated:      http.StatusUnauthorized,
	model.ErrCodeSessionExpired:        http.StatusUnauthorized,
	model.ErrCodeSessionNotFound:       http.StatusUnauthorized,
	model.ErrCodePaymentVerification:   http.StatusPaymentRequired,
	model.ErrCodeOrderFailed:           http.StatusBadGateway,
	model.ErrCodeUpstream:              http.StatusBadGateway,
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent.
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Str("code", code).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// respondError maps err onto a response. Domain errors keep their own message;
// anything else is reported as fallback so upstream details stay in the logs.
func respondError(w http.ResponseWriter, err error, fallback string, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		status, ok := statusByCode[domainErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		if domainErr.Code == model.ErrCodeSessionExpired {
			logger.Warn().Str("code", domainErr.Code).Msg("session expired")
			writeJSON(w, status, model.ErrorResponse{
				Error:    domainErr.Code,
				Message:  domainErr.Message,
				Redirect: SignInRedirect,
			})
			return
		}
		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("code", domainErr.Code).Int("status", status).Msg("handler error")
		} else {
			logger.Debug().Str("code", domainErr.Code).Int("status", status).Msg("request rejected")
		}
		writeJSON(w, status, model.ErrorResponse{Error: domainErr.Code, Message: domainErr.Message})
		return
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		logger.Error().Err(err).Int("upstream_status", apiErr.StatusCode).Msg(fallback)
		writeJSON(w, http.StatusBadGateway, model.ErrorResponse{Error: model.ErrCodeUpstream, Message: fallback})
		return
	}

	logger.Error().Err(err).Msg(fallback)
	writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: model.ErrCodeInternalError, Message: fallback})
}

// decodeJSON reads the request body into dst. An empty body is rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, logger zerolog.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", logger)
		return false
	}
	return true
}

// currentSession returns the session attached by the session middleware.
func currentSession(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (*session.Session, bool) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeSessionNotFound, "session required", logger)
		return nil, false
	}
	return s, true
}
