package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bihar-bazaar/internal/auth"
	"bihar-bazaar/internal/cart"
	"bihar-bazaar/internal/model"
	"bihar-bazaar/internal/repository"
	"bihar-bazaar/internal/telemetry"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// touchAfter is how long a session that is only read may go without a write
// before Touch refreshes its updated_at.
const touchAfter = time.Hour

// Manager keeps live sessions in memory and mirrors them to PostgreSQL.
type Manager struct {
	sessions repository.SessionRepository
	ledger   repository.LedgerRepository
	api      auth.API
	authOpts auth.Options
	metrics  *telemetry.Metrics
	logger   zerolog.Logger
	now      func() time.Time

	mu   sync.RWMutex
	live map[uuid.UUID]*Session
}

// NewManager creates a session manager.
func NewManager(
	sessions repository.SessionRepository,
	ledger repository.LedgerRepository,
	api auth.API,
	authOpts auth.Options,
	metrics *telemetry.Metrics,
	logger zerolog.Logger,
) *Manager {
	if metrics == nil {
		metrics = telemetry.NopMetrics()
	}
	return &Manager{
		sessions: sessions,
		ledger:   ledger,
		api:      api,
		authOpts: authOpts,
		metrics:  metrics,
		logger:   logger.With().Str("component", "session-manager").Logger(),
		now:      time.Now,
		live:     make(map[uuid.UUID]*Session),
	}
}

// Create starts a new anonymous session.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	now := m.now().UTC()
	rec := model.Session{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := m.sessions.Create(ctx, &rec); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s := newSession(rec, cart.State{}, m.api, m.authOpts)

	m.mu.Lock()
	m.live[s.id] = s
	m.mu.Unlock()

	m.logger.Info().Str("session_id", s.id.String()).Msg("session created")
	return s, nil
}

// Get returns a live session, hydrating it from the database on first use.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	s, ok := m.live[id]
	m.mu.RUnlock()
	if ok {
		return s, nil
	}

	rec, err := m.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if rec == nil {
		return nil, model.ErrSessionNotFound
	}

	items, err := m.ledger.GetCartItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	wishlist, err := m.ledger.GetWishlist(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlist: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another request may have hydrated it meanwhile.
	if s, ok := m.live[id]; ok {
		return s, nil
	}

	s = newSession(*rec, cart.State{Items: items, Wishlist: wishlist}, m.api, m.authOpts)
	m.live[id] = s

	m.logger.Debug().
		Str("session_id", id.String()).
		Int("cart_items", len(items)).
		Int("wishlist_items", len(wishlist)).
		Msg("session hydrated")

	return s, nil
}

// Persist writes the session's tokens, profile, cart and wishlist in one transaction.
func (m *Manager) Persist(ctx context.Context, s *Session) (err error) {
	state, err := s.cart.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to read cart: %w", err)
	}

	tx, err := m.sessions.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				m.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	rec := s.record(m.now().UTC())
	if err = m.sessions.Update(ctx, tx, rec); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	if err = m.ledger.ReplaceCartItems(ctx, tx, s.id, state.Items); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	if err = m.ledger.ReplaceWishlist(ctx, tx, s.id, state.Wishlist); err != nil {
		return fmt.Errorf("failed to persist wishlist: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.markPersisted(rec.UpdatedAt)
	return nil
}

// Wipe clears the visitor's local state and persists the empty session.
// It runs on logout and when a token refresh fails.
func (m *Manager) Wipe(ctx context.Context, s *Session) error {
	if s.Expired() {
		m.metrics.SessionExpired(ctx)
		m.logger.Info().Str("session_id", s.id.String()).Msg("session expired, wiping local state")
	}

	if err := s.wipe(ctx); err != nil {
		return fmt.Errorf("failed to wipe session: %w", err)
	}
	return m.Persist(ctx, s)
}

// Touch persists s after a request that did not write it: when a token
// refresh rotated its tokens, or when its last write is older than touchAfter
// so an active reader is not swept as idle.
func (m *Manager) Touch(ctx context.Context, s *Session) error {
	if !s.unsaved() && m.now().UTC().Sub(s.lastPersisted()) < touchAfter {
		return nil
	}
	return m.Persist(ctx, s)
}

// Sweep deletes sessions idle for longer than idle and evicts them from memory.
// A live session busy with a request is skipped and kept in the database.
func (m *Manager) Sweep(ctx context.Context, idle time.Duration) (int64, error) {
	cutoff := m.now().UTC().Add(-idle)

	var busy []uuid.UUID
	m.mu.Lock()
	for id, s := range m.live {
		if !s.lastPersisted().Before(cutoff) {
			continue
		}
		if !s.op.TryLock() {
			busy = append(busy, id)
			continue
		}
		s.evicted = true
		s.cart.Close()
		delete(m.live, id)
		s.op.Unlock()
	}
	m.mu.Unlock()

	if len(busy) > 0 {
		m.logger.Debug().Int("count", len(busy)).Msg("skipped busy sessions during sweep")
	}

	return m.sessions.DeleteIdle(ctx, cutoff, busy)
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (m *Manager) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.Sweep(ctx, idle); err != nil {
				m.logger.Error().Err(err).Msg("session sweep failed")
			}
		}
	}
}

// Close stops every live session's cart store.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.live {
		s.cart.Close()
		delete(m.live, id)
	}
}
