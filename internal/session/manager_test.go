package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"bihar-bazaar/internal/auth"
	"bihar-bazaar/internal/cart"
	"bihar-bazaar/internal/checkout"
	"bihar-bazaar/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, *MockSessionRepository, *MockLedgerRepository) {
	t.Helper()
	sessions := new(MockSessionRepository)
	ledger := new(MockLedgerRepository)
	m := NewManager(sessions, ledger, stubAPI{}, auth.Options{ResendCooldown: 30 * time.Second}, nil, zerolog.Nop())
	t.Cleanup(m.Close)
	return m, sessions, ledger
}

func TestManager_Create(t *testing.T) {
	m, sessions, _ := newTestManager(t)
	ctx := context.Background()

	sessions.On("Create", ctx, mock.AnythingOfType("*model.Session")).Return(nil)

	s, err := m.Create(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, s.ID())
	assert.False(t, s.Authenticated())
	assert.Equal(t, auth.StepPhone, s.Auth().Step())

	// Served from memory afterwards.
	got, err := m.Get(ctx, s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)
	sessions.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestManager_Create_RepositoryError(t *testing.T) {
	m, sessions, _ := newTestManager(t)
	ctx := context.Background()

	sessions.On("Create", ctx, mock.Anything).Return(errors.New("connection refused"))

	s, err := m.Create(ctx)
	require.Error(t, err)
	assert.Nil(t, s)
	assert.Contains(t, err.Error(), "failed to create session")
}

func TestManager_Get_Hydrates(t *testing.T) {
	m, sessions, ledger := newTestManager(t)
	ctx := context.Background()
	id := uuid.New()

	sessions.On("GetByID", ctx, id).Return(&model.Session{
		ID:      id,
		Tokens:  model.Tokens{AccessToken: "acc", RefreshToken: "ref"},
		Profile: model.Profile{Phone: "+919876543210", Name: "Sita"},
	}, nil).Once()
	ledger.On("GetCartItems", ctx, id).Return([]model.CartItem{
		{ProductID: "a", Name: "A", UnitPrice: 100, Quantity: 2, Status: model.SyncConfirmed},
	}, nil).Once()
	ledger.On("GetWishlist", ctx, id).Return([]model.WishlistItem{{ProductID: "w"}}, nil).Once()

	s, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, s.Authenticated())
	assert.Equal(t, "Sita", s.Profile().Name)

	state, err := s.Cart().Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, state.ItemCount())
	assert.True(t, state.InWishlist("w"))

	// Second lookup does not touch the database.
	again, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Same(t, s, again)

	sessions.AssertExpectations(t)
	ledger.AssertExpectations(t)
}

func TestManager_Get_NotFound(t *testing.T) {
	m, sessions, _ := newTestManager(t)
	ctx := context.Background()
	id := uuid.New()

	sessions.On("GetByID", ctx, id).Return(nil, nil)

	s, err := m.Get(ctx, id)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}

func TestManager_Persist(t *testing.T) {
	m, sessions, ledger := newTestManager(t)
	ctx := context.Background()

	sessions.On("Create", ctx, mock.Anything).Return(nil)
	s, err := m.Create(ctx)
	require.NoError(t, err)

	_, err = s.Cart().Dispatch(ctx, cart.AddItem{Item: model.CartItem{ProductID: "a", Name: "A", UnitPrice: 100, Quantity: 1}})
	require.NoError(t, err)
	s.UpdateTokens(model.Tokens{AccessToken: "acc"})

	tx := new(MockTx)
	tx.On("Commit", ctx).Return(nil)
	sessions.On("BeginTx", ctx).Return(tx, nil)
	sessions.On("Update", ctx, tx, mock.MatchedBy(func(rec *model.Session) bool {
		return rec.ID == s.ID() && rec.Tokens.AccessToken == "acc"
	})).Return(nil)
	ledger.On("ReplaceCartItems", ctx, tx, s.ID(), mock.MatchedBy(func(items []model.CartItem) bool {
		return len(items) == 1 && items[0].ProductID == "a"
	})).Return(nil)
	ledger.On("ReplaceWishlist", ctx, tx, s.ID(), mock.Anything).Return(nil)

	require.NoError(t, m.Persist(ctx, s))

	tx.AssertExpectations(t)
	tx.AssertNotCalled(t, "Rollback", mock.Anything)
	sessions.AssertExpectations(t)
	ledger.AssertExpectations(t)
}

func TestManager_Persist_RollsBackOnError(t *testing.T) {
	m, sessions, ledger := newTestManager(t)
	ctx := context.Background()

	sessions.On("Create", ctx, mock.Anything).Return(nil)
	s, err := m.Create(ctx)
	require.NoError(t, err)

	tx := new(MockTx)
	tx.On("Rollback", ctx).Return(nil)
	sessions.On("BeginTx", ctx).Return(tx, nil)
	sessions.On("Update", ctx, tx, mock.Anything).Return(nil)
	ledger.On("ReplaceCartItems", ctx, tx, s.ID(), mock.Anything).Return(errors.New("constraint violation"))

	err = m.Persist(ctx, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to persist cart")

	tx.AssertCalled(t, "Rollback", ctx)
	tx.AssertNotCalled(t, "Commit", mock.Anything)
	ledger.AssertNotCalled(t, "ReplaceWishlist", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestManager_Wipe(t *testing.T) {
	m, sessions, ledger := newTestManager(t)
	ctx := context.Background()

	sessions.On("Create", ctx, mock.Anything).Return(nil)
	s, err := m.Create(ctx)
	require.NoError(t, err)

	s.UpdateTokens(model.Tokens{AccessToken: "acc", RefreshToken: "ref"})
	s.SetProfile(model.Profile{Phone: "+919876543210"})
	s.BeginCheckout(checkout.NewSession())
	_, err = s.Cart().Dispatch(ctx, cart.AddItem{Item: model.CartItem{ProductID: "a", Name: "A", UnitPrice: 100, Quantity: 1}})
	require.NoError(t, err)
	_, err = s.Cart().Dispatch(ctx, cart.AddToWishlist{Item: model.WishlistItem{ProductID: "w"}})
	require.NoError(t, err)

	// A failed refresh flags the session.
	s.Expire()
	assert.True(t, s.Expired())
	assert.False(t, s.Authenticated())

	tx := new(MockTx)
	tx.On("Commit", ctx).Return(nil)
	sessions.On("BeginTx", ctx).Return(tx, nil)
	sessions.On("Update", ctx, tx, mock.MatchedBy(func(rec *model.Session) bool {
		return !rec.Tokens.Valid() && rec.Profile == model.Profile{}
	})).Return(nil)
	ledger.On("ReplaceCartItems", ctx, tx, s.ID(), mock.MatchedBy(func(items []model.CartItem) bool {
		return len(items) == 0
	})).Return(nil)
	ledger.On("ReplaceWishlist", ctx, tx, s.ID(), mock.MatchedBy(func(items []model.WishlistItem) bool {
		return len(items) == 0
	})).Return(nil)

	require.NoError(t, m.Wipe(ctx, s))

	assert.False(t, s.Expired())
	assert.Nil(t, s.Checkout())
	assert.Empty(t, s.Profile().Phone)

	state, err := s.Cart().Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, state.Items)
	assert.Empty(t, state.Wishlist)
}

func TestManager_Sweep(t *testing.T) {
	m, sessions, _ := newTestManager(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	sessions.On("Create", ctx, mock.Anything).Return(nil)
	s, err := m.Create(ctx)
	require.NoError(t, err)

	m.now = func() time.Time { return base.Add(48 * time.Hour) }
	sessions.On("DeleteIdle", ctx, base.Add(24*time.Hour), []uuid.UUID(nil)).Return(int64(1), nil)

	n, err := m.Sweep(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Evicted from memory, so the next lookup goes to the database.
	sessions.On("GetByID", ctx, s.ID()).Return(nil, nil)
	_, err = m.Get(ctx, s.ID())
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}

func TestManager_Sweep_SkipsBusySession(t *testing.T) {
	m, sessions, _ := newTestManager(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	sessions.On("Create", ctx, mock.Anything).Return(nil)
	idle, err := m.Create(ctx)
	require.NoError(t, err)
	busy, err := m.Create(ctx)
	require.NoError(t, err)

	// A request is in flight on busy.
	busy.Lock()

	m.now = func() time.Time { return base.Add(48 * time.Hour) }
	sessions.On("DeleteIdle", ctx, base.Add(24*time.Hour), []uuid.UUID{busy.ID()}).Return(int64(1), nil)

	n, err := m.Sweep(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.False(t, busy.Evicted())
	_, err = busy.Cart().Snapshot(ctx)
	require.NoError(t, err)
	busy.Unlock()

	got, err := m.Get(ctx, busy.ID())
	require.NoError(t, err)
	assert.Same(t, busy, got)

	idle.Lock()
	assert.True(t, idle.Evicted())
	idle.Unlock()
	_, err = idle.Cart().Snapshot(ctx)
	assert.ErrorIs(t, err, cart.ErrStoreClosed)
}

func TestManager_Touch(t *testing.T) {
	m, sessions, ledger := newTestManager(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	sessions.On("Create", ctx, mock.Anything).Return(nil)
	s, err := m.Create(ctx)
	require.NoError(t, err)

	tx := new(MockTx)
	tx.On("Commit", ctx).Return(nil)
	sessions.On("BeginTx", ctx).Return(tx, nil)
	sessions.On("Update", ctx, tx, mock.Anything).Return(nil)
	ledger.On("ReplaceCartItems", ctx, tx, s.ID(), mock.Anything).Return(nil)
	ledger.On("ReplaceWishlist", ctx, tx, s.ID(), mock.Anything).Return(nil)

	// Nothing changed and the last write is recent.
	m.now = func() time.Time { return base.Add(time.Minute) }
	require.NoError(t, m.Touch(ctx, s))
	sessions.AssertNotCalled(t, "BeginTx", mock.Anything)

	// A refresh rotated the tokens during a read-only request.
	s.UpdateTokens(model.Tokens{AccessToken: "acc2", RefreshToken: "ref2"})
	require.NoError(t, m.Touch(ctx, s))
	sessions.AssertCalled(t, "Update", ctx, tx, mock.MatchedBy(func(rec *model.Session) bool {
		return rec.Tokens.RefreshToken == "ref2"
	}))

	require.NoError(t, m.Touch(ctx, s))
	sessions.AssertNumberOfCalls(t, "BeginTx", 1)

	// A reader active past touchAfter advances updated_at.
	m.now = func() time.Time { return base.Add(2 * time.Hour) }
	require.NoError(t, m.Touch(ctx, s))
	sessions.AssertNumberOfCalls(t, "BeginTx", 2)
	sessions.AssertCalled(t, "Update", ctx, tx, mock.MatchedBy(func(rec *model.Session) bool {
		return rec.UpdatedAt.Equal(base.Add(2 * time.Hour))
	}))
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	s := &Session{id: uuid.New()}
	got, ok := FromContext(NewContext(context.Background(), s))
	require.True(t, ok)
	assert.Same(t, s, got)
}
