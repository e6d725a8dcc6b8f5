package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"bihar-bazaar/internal/model"
	"bihar-bazaar/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SessionHeader carries the visitor session id.
const SessionHeader = "X-Session-ID"

// SessionResolver loads sessions, saves what a request left unsaved and
// wipes them once expired.
type SessionResolver interface {
	Get(ctx context.Context, id uuid.UUID) (*session.Session, error)
	Touch(ctx context.Context, s *session.Session) error
	Wipe(ctx context.Context, s *session.Session) error
}

// CORS adds CORS headers to the response.
func CORS(allowOrigins string) func(http.Handler) http.Handler {
	if allowOrigins == "" {
		allowOrigins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+SessionHeader)

			// Handle preflight requests
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Session resolves the X-Session-ID header and attaches the session to the
// request context. Requests on one session are serialised. If a token refresh
// failed while handling the request, the session is wiped afterwards;
// otherwise it is touched so rotated tokens and activity reach the database.
func Session(sessions SessionResolver, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(SessionHeader)
			if raw == "" {
				logger.Warn().Str("path", r.URL.Path).Msg("missing session id")
				writeError(w, http.StatusUnauthorized, model.ErrCodeSessionNotFound, "missing session id")
				return
			}

			id, err := uuid.Parse(raw)
			if err != nil {
				logger.Warn().Str("path", r.URL.Path).Str("session_id", raw[:min(8, len(raw))]).Msg("malformed session id")
				writeError(w, http.StatusUnauthorized, model.ErrCodeSessionNotFound, "invalid session id")
				return
			}

			s, err := sessions.Get(r.Context(), id)
			if err != nil {
				if errors.Is(err, model.ErrSessionNotFound) {
					writeError(w, http.StatusUnauthorized, model.ErrCodeSessionNotFound, model.ErrSessionNotFound.Message)
					return
				}
				logger.Error().Err(err).Str("session_id", raw).Msg("failed to load session")
				writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to load session")
				return
			}

			s.Lock()
			defer s.Unlock()

			if s.Evicted() {
				writeError(w, http.StatusUnauthorized, model.ErrCodeSessionNotFound, model.ErrSessionNotFound.Message)
				return
			}

			next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), s)))

			ctx := context.WithoutCancel(r.Context())
			if s.Expired() {
				if err := sessions.Wipe(ctx, s); err != nil {
					logger.Error().Err(err).Str("session_id", raw).Msg("failed to wipe expired session")
				}
				return
			}
			if err := sessions.Touch(ctx, s); err != nil {
				logger.Error().Err(err).Str("session_id", raw).Msg("failed to touch session")
			}
		})
	}
}

// RequireAuth rejects requests whose session is not signed in.
func RequireAuth(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := session.FromContext(r.Context())
			if !ok || !s.Authenticated() {
				logger.Debug().Str("path", r.URL.Path).Msg("sign-in required")
				writeJSON(w, http.StatusUnauthorized, model.ErrorResponse{
					Error:    model.ErrCodeNotAuthenticated,
					Message:  model.ErrNotAuthenticated.Message,
					Redirect: "/",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Logging logs HTTP requests with timing information.
func Logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Create a response writer wrapper to capture status code
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.statusCode).
				Dur("duration", duration).
				Str("remote_addr", r.RemoteAddr).
				Msg("http request")
		})
	}
}

// Recovery recovers from panics and returns a 500 error.
func Recovery(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error().
						Interface("panic", err).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Msg("panic recovered")

					writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code.
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
