package repository

import (
	"context"
	"fmt"

	"bihar-bazaar/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// ledgerRepository implements the LedgerRepository interface using PostgreSQL.
type ledgerRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewLedgerRepository creates a new PostgreSQL-backed cart and wishlist repository.
func NewLedgerRepository(pool *pgxpool.Pool, logger zerolog.Logger) LedgerRepository {
	return &ledgerRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "ledger").Logger(),
	}
}

func (r *ledgerRepository) ReplaceCartItems(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID, items []model.CartItem) error {
	if _, err := tx.Exec(ctx, `DELETE FROM session_cart_items WHERE session_id = $1`, sessionID); err != nil {
		r.logger.Error().Err(err).Str("session_id", sessionID.String()).Msg("failed to clear cart items")
		return fmt.Errorf("failed to clear cart items: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO session_cart_items
			(session_id, product_id, position, name, unit_price, quantity, category, artisan_name, image_ref, sync_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	batch := &pgx.Batch{}
	for i, item := range items {
		status := item.Status
		if status == "" {
			status = model.SyncConfirmed
		}
		batch.Queue(query,
			sessionID, item.ProductID, i, item.Name, item.UnitPrice, item.Quantity,
			item.Category, item.ArtisanName, item.ImageRef, string(status),
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("session_id", sessionID.String()).
				Str("product_id", items[i].ProductID).
				Msg("failed to store cart item")
			return fmt.Errorf("failed to store cart item: %w", err)
		}
	}

	r.logger.Debug().
		Str("session_id", sessionID.String()).
		Int("count", len(items)).
		Msg("cart items stored")

	return nil
}

func (r *ledgerRepository) ReplaceWishlist(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID, items []model.WishlistItem) error {
	if _, err := tx.Exec(ctx, `DELETE FROM session_wishlist WHERE session_id = $1`, sessionID); err != nil {
		r.logger.Error().Err(err).Str("session_id", sessionID.String()).Msg("failed to clear wishlist")
		return fmt.Errorf("failed to clear wishlist: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO session_wishlist
			(session_id, product_id, name, unit_price, category, artisan_name, image_ref, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			sessionID, item.ProductID, item.Name, item.UnitPrice,
			item.Category, item.ArtisanName, item.ImageRef, item.AddedAt,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("session_id", sessionID.String()).
				Str("product_id", items[i].ProductID).
				Msg("failed to store wishlist item")
			return fmt.Errorf("failed to store wishlist item: %w", err)
		}
	}

	return nil
}

func (r *ledgerRepository) GetCartItems(ctx context.Context, sessionID uuid.UUID) ([]model.CartItem, error) {
	query := `
		SELECT product_id, name, unit_price, quantity, category, artisan_name, image_ref, sync_status
		FROM session_cart_items
		WHERE session_id = $1
		ORDER BY position
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		r.logger.Error().Err(err).Str("session_id", sessionID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var items []model.CartItem
	for rows.Next() {
		var item model.CartItem
		var status string
		err := rows.Scan(
			&item.ProductID,
			&item.Name,
			&item.UnitPrice,
			&item.Quantity,
			&item.Category,
			&item.ArtisanName,
			&item.ImageRef,
			&status,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart item row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		item.Status = model.SyncStatus(status)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart item rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

func (r *ledgerRepository) GetWishlist(ctx context.Context, sessionID uuid.UUID) ([]model.WishlistItem, error) {
	query := `
		SELECT product_id, name, unit_price, category, artisan_name, image_ref, added_at
		FROM session_wishlist
		WHERE session_id = $1
		ORDER BY added_at, product_id
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		r.logger.Error().Err(err).Str("session_id", sessionID.String()).Msg("failed to query wishlist")
		return nil, fmt.Errorf("failed to query wishlist: %w", err)
	}
	defer rows.Close()

	var items []model.WishlistItem
	for rows.Next() {
		var item model.WishlistItem
		err := rows.Scan(
			&item.ProductID,
			&item.Name,
			&item.UnitPrice,
			&item.Category,
			&item.ArtisanName,
			&item.ImageRef,
			&item.AddedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan wishlist row")
			return nil, fmt.Errorf("failed to scan wishlist item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating wishlist rows")
		return nil, fmt.Errorf("error iterating wishlist: %w", err)
	}

	return items, nil
}
