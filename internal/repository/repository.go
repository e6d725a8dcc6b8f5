package repository

import (
	"context"
	"time"

	"bihar-bazaar/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SessionRepository defines the data access operations for visitor sessions.
type SessionRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts a new session row.
	Create(ctx context.Context, session *model.Session) error

	// GetByID retrieves a session by its ID. Returns nil, nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error)

	// Update writes tokens and profile within the provided transaction.
	Update(ctx context.Context, tx pgx.Tx, session *model.Session) error

	// Delete removes a session and, by cascade, its ledger rows.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteIdle removes sessions not updated since the cutoff, except those in
	// keep, and returns how many were removed.
	DeleteIdle(ctx context.Context, cutoff time.Time, keep []uuid.UUID) (int64, error)
}

// LedgerRepository defines the data access operations for a session's cart and wishlist.
type LedgerRepository interface {
	// ReplaceCartItems overwrites the stored cart lines, preserving their order.
	ReplaceCartItems(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID, items []model.CartItem) error

	// ReplaceWishlist overwrites the stored wishlist.
	ReplaceWishlist(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID, items []model.WishlistItem) error

	// GetCartItems returns the stored cart lines in insertion order.
	GetCartItems(ctx context.Context, sessionID uuid.UUID) ([]model.CartItem, error)

	// GetWishlist returns the stored wishlist ordered by when each entry was added.
	GetWishlist(ctx context.Context, sessionID uuid.UUID) ([]model.WishlistItem, error)
}
