package service

import (
	"context"
	"fmt"
	"time"

	"bihar-bazaar/internal/cart"
	"bihar-bazaar/internal/model"
	"bihar-bazaar/internal/session"

	"github.com/rs/zerolog"
)

type wishlistService struct {
	products ProductService
	store    SessionStore
	now      func() time.Time
	logger   zerolog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(products ProductService, store SessionStore, logger zerolog.Logger) WishlistService {
	return &wishlistService{
		products: products,
		store:    store,
		now:      time.Now,
		logger:   logger.With().Str("service", "wishlist").Logger(),
	}
}

func (w *wishlistService) List(ctx context.Context, s *session.Session) ([]model.WishlistItem, error) {
	state, err := s.Cart().Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read wishlist: %w", err)
	}
	return state.Wishlist, nil
}

// Add saves a product. Adding a product already saved is a no-op.
func (w *wishlistService) Add(ctx context.Context, s *session.Session, productID string) ([]model.WishlistItem, error) {
	product, err := w.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	state, err := s.Cart().Dispatch(ctx, cart.AddToWishlist{Item: model.WishlistItemFromProduct(*product, w.now().UTC())})
	if err != nil {
		return nil, err
	}

	persist(ctx, w.store, s, w.logger)
	return state.Wishlist, nil
}

func (w *wishlistService) Remove(ctx context.Context, s *session.Session, productID string) ([]model.WishlistItem, error) {
	state, err := s.Cart().Dispatch(ctx, cart.RemoveFromWishlist{ProductID: productID})
	if err != nil {
		return nil, err
	}

	persist(ctx, w.store, s, w.logger)
	return state.Wishlist, nil
}
