package coupon

import (
	"context"
	"fmt"

	"bihar-bazaar/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// tableEvaluator implements Evaluator against an in-memory table.
// The table is read-only after construction.
type tableEvaluator struct {
	table  Table
	logger zerolog.Logger
}

// NewTableEvaluator wraps an already built table.
func NewTableEvaluator(table Table, logger zerolog.Logger) Evaluator {
	return &tableEvaluator{
		table:  table,
		logger: logger.With().Str("component", "coupon-evaluator").Logger(),
	}
}

// NewEvaluator builds the built-in table and merges every file in paths over it.
// Files load concurrently; later files win on duplicate codes.
func NewEvaluator(ctx context.Context, paths []string, loader Loader, logger zerolog.Logger) (Evaluator, error) {
	logger = logger.With().Str("component", "coupon-evaluator").Logger()

	table := BuiltinTable()
	if len(paths) == 0 {
		logger.Info().Int("total_coupons", table.Size()).Msg("using built-in coupon table")
		return &tableEvaluator{table: table, logger: logger}, nil
	}

	loaded := make([]Table, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			t, err := loader.Load(gctx, path)
			if err != nil {
				return fmt.Errorf("failed to load coupon file %s: %w", path, err)
			}
			loaded[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("failed to initialise coupon evaluator")
		return nil, err
	}

	for i, t := range loaded {
		table.Merge(t)
		logger.Info().
			Str("file", paths[i]).
			Int("size", t.Size()).
			Msg("coupon table merged")
	}

	logger.Info().
		Int("file_count", len(paths)).
		Int("total_coupons", table.Size()).
		Msg("coupon evaluator initialised")

	return &tableEvaluator{table: table, logger: logger}, nil
}

func (e *tableEvaluator) Evaluate(ctx context.Context, code string) (model.Coupon, error) {
	normalized := Normalize(code)
	if normalized == "" {
		return model.Coupon{}, model.ErrInvalidCoupon
	}

	pct, ok := e.table.Lookup(normalized)
	if !ok {
		e.logger.Debug().Str("code", normalized).Msg("coupon code rejected")
		return model.Coupon{}, model.ErrInvalidCoupon
	}

	return model.Coupon{Code: normalized, DiscountPercent: pct}, nil
}
