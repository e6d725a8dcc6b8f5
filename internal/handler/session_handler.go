package handler

import (
	"context"
	"net/http"

	"bihar-bazaar/internal/model"
	"bihar-bazaar/internal/session"

	"github.com/rs/zerolog"
)

// SessionCreator starts visitor sessions.
type SessionCreator interface {
	Create(ctx context.Context) (*session.Session, error)
}

// SessionResponse identifies a session and whether it is signed in.
type SessionResponse struct {
	SessionID     string        `json:"sessionId"`
	Authenticated bool          `json:"authenticated"`
	Profile       model.Profile `json:"profile"`
}

// SessionHandler handles session HTTP requests.
type SessionHandler struct {
	sessions SessionCreator
	logger   zerolog.Logger
}

func NewSessionHandler(sessions SessionCreator, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger.With().Str("handler", "session").Logger(),
	}
}

// Create handles POST /api/sessions.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Create(r.Context())
	if err != nil {
		respondError(w, err, "failed to create session", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, SessionResponse{SessionID: s.ID().String()})
}

// Get handles GET /api/sessions/current.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{
		SessionID:     s.ID().String(),
		Authenticated: s.Authenticated(),
		Profile:       s.Profile(),
	})
}
