// Package session holds per-visitor state: tokens, profile, the cart ledger,
// the in-progress checkout and the sign-in flow.
package session

import (
	"context"
	"sync"
	"time"

	"bihar-bazaar/internal/auth"
	"bihar-bazaar/internal/cart"
	"bihar-bazaar/internal/checkout"
	"bihar-bazaar/internal/model"

	"github.com/google/uuid"
)

// Session is one visitor's server-side state.
//
// Operations on a session are serialised with Lock/Unlock. Tokens and profile
// have their own lock because the backend client reads and rotates them
// while an operation holds the session.
type Session struct {
	id        uuid.UUID
	createdAt time.Time

	op      sync.Mutex
	evicted bool // guarded by op

	mu        sync.RWMutex
	tokens    model.Tokens
	profile   model.Profile
	expired   bool
	dirty     bool
	persisted time.Time

	cart     *cart.Store
	checkout *checkout.Session
	auth     *auth.Flow
}

func newSession(rec model.Session, state cart.State, api auth.API, opts auth.Options) *Session {
	s := &Session{
		id:        rec.ID,
		createdAt: rec.CreatedAt,
		tokens:    rec.Tokens,
		profile:   rec.Profile,
		persisted: rec.UpdatedAt,
		cart:      cart.NewStore(state),
	}
	s.auth = auth.NewFlow(api, s, opts)
	return s
}

func (s *Session) ID() uuid.UUID { return s.id }

// Lock acquires the session for one operation.
func (s *Session) Lock() { s.op.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.op.Unlock() }

// Evicted reports whether the sweeper dropped the session. Callers must hold the lock.
func (s *Session) Evicted() bool { return s.evicted }

// Tokens implements backend.Credentials.
func (s *Session) Tokens() model.Tokens {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens
}

// UpdateTokens implements backend.Credentials. The session is marked dirty
// until the next successful Persist.
func (s *Session) UpdateTokens(t model.Tokens) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = t
	s.expired = false
	s.dirty = true
}

// Expire implements backend.Credentials. It drops the tokens and flags the
// session so the rest of its local state is wiped once the operation ends.
func (s *Session) Expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = model.Tokens{}
	s.expired = true
}

// Expired reports whether a refresh failed during the current operation.
func (s *Session) Expired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expired
}

// Authenticated reports whether the session holds an access token.
func (s *Session) Authenticated() bool {
	return s.Tokens().Valid()
}

func (s *Session) Profile() model.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

func (s *Session) SetProfile(p model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
}

// Cart returns the session's cart ledger.
func (s *Session) Cart() *cart.Store { return s.cart }

// Auth returns the sign-in flow.
func (s *Session) Auth() *auth.Flow { return s.auth }

// Checkout returns the in-progress checkout, or nil.
func (s *Session) Checkout() *checkout.Session { return s.checkout }

// BeginCheckout replaces any in-progress checkout.
func (s *Session) BeginCheckout(c *checkout.Session) { s.checkout = c }

// EndCheckout discards the in-progress checkout.
func (s *Session) EndCheckout() { s.checkout = nil }

// wipe clears everything the visitor owns locally.
func (s *Session) wipe(ctx context.Context) error {
	s.mu.Lock()
	s.tokens = model.Tokens{}
	s.profile = model.Profile{}
	s.expired = false
	s.mu.Unlock()

	s.checkout = nil
	s.auth.Reset()

	_, err := s.cart.Dispatch(ctx, cart.Reset{})
	return err
}

// record builds the persisted form of the session.
func (s *Session) record(now time.Time) *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &model.Session{
		ID:        s.id,
		Tokens:    s.tokens,
		Profile:   s.profile,
		CreatedAt: s.createdAt,
		UpdatedAt: now,
	}
}

func (s *Session) markPersisted(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persisted = at
	s.dirty = false
}

// unsaved reports whether tokens changed since the last Persist.
func (s *Session) unsaved() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

func (s *Session) lastPersisted() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persisted
}

type contextKey struct{}

// NewContext returns a context carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by NewContext.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok
}
