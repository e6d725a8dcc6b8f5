package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bihar-bazaar/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// sessionRepository implements the SessionRepository interface using PostgreSQL.
type sessionRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSessionRepository creates a new PostgreSQL-backed session repository.
func NewSessionRepository(pool *pgxpool.Pool, logger zerolog.Logger) SessionRepository {
	return &sessionRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "session").Logger(),
	}
}

func (r *sessionRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

func (r *sessionRepository) Create(ctx context.Context, session *model.Session) error {
	query := `
		INSERT INTO sessions (id, access_token, refresh_token, phone, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.Tokens.AccessToken,
		session.Tokens.RefreshToken,
		session.Profile.Phone,
		session.Profile.Name,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("session_id", session.ID.String()).
			Msg("failed to create session")
		return fmt.Errorf("failed to create session: %w", err)
	}

	r.logger.Debug().
		Str("session_id", session.ID.String()).
		Msg("session created successfully")

	return nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	query := `
		SELECT id, access_token, refresh_token, phone, name, created_at, updated_at
		FROM sessions
		WHERE id = $1
	`

	var s model.Session
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.Tokens.AccessToken,
		&s.Tokens.RefreshToken,
		&s.Profile.Phone,
		&s.Profile.Name,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("session_id", id.String()).Msg("session not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("session_id", id.String()).Msg("failed to query session")
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	return &s, nil
}

func (r *sessionRepository) Update(ctx context.Context, tx pgx.Tx, session *model.Session) error {
	query := `
		UPDATE sessions
		SET access_token = $2, refresh_token = $3, phone = $4, name = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query,
		session.ID,
		session.Tokens.AccessToken,
		session.Tokens.RefreshToken,
		session.Profile.Phone,
		session.Profile.Name,
		session.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("session_id", session.ID.String()).
			Msg("failed to update session")
		return fmt.Errorf("failed to update session: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrSessionNotFound
	}

	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("session_id", id.String()).Msg("failed to delete session")
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *sessionRepository) DeleteIdle(ctx context.Context, cutoff time.Time, keep []uuid.UUID) (int64, error) {
	ids := make([]string, 0, len(keep))
	for _, id := range keep {
		ids = append(ids, id.String())
	}

	tag, err := r.pool.Exec(ctx,
		`DELETE FROM sessions WHERE updated_at < $1 AND id::text <> ALL($2::text[])`,
		cutoff, ids)
	if err != nil {
		r.logger.Error().Err(err).Time("cutoff", cutoff).Msg("failed to delete idle sessions")
		return 0, fmt.Errorf("failed to delete idle sessions: %w", err)
	}

	if n := tag.RowsAffected(); n > 0 {
		r.logger.Info().Int64("count", n).Msg("idle sessions removed")
	}

	return tag.RowsAffected(), nil
}
