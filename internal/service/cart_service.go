package service

import (
	"context"
	"errors"
	"fmt"

	"bihar-bazaar/internal/cart"
	"bihar-bazaar/internal/model"
	"bihar-bazaar/internal/pricing"
	"bihar-bazaar/internal/session"
	"bihar-bazaar/internal/telemetry"

	"github.com/rs/zerolog"
)

var syncFailures = map[string]string{
	"add":    "failed to add item to cart",
	"update": "failed to update cart item",
	"remove": "failed to remove cart item",
	"clear":  "failed to clear cart",
}

// cartService implements CartService with optimistic local updates.
// Each mutation lands locally as pending and is then marked confirmed, or
// rolled back according to the backend's answer.
type cartService struct {
	backend  CartBackend
	products ProductService
	calc     *pricing.Calculator
	store    SessionStore
	metrics  *telemetry.Metrics
	logger   zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	backend CartBackend,
	products ProductService,
	calc *pricing.Calculator,
	store SessionStore,
	metrics *telemetry.Metrics,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		backend:  backend,
		products: products,
		calc:     calc,
		store:    store,
		metrics:  metrics,
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

func (c *cartService) View(ctx context.Context, s *session.Session) (*model.CartView, error) {
	state, err := s.Cart().Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	return c.view(s, state), nil
}

// AddItem adds quantity units of a catalogue product. Name, price and artisan
// come from the catalogue.
func (c *cartService) AddItem(ctx context.Context, s *session.Session, productID string, quantity int) (*model.CartView, error) {
	if quantity < 1 || quantity > model.MaxQuantity {
		return nil, model.ErrInvalidQuantity
	}
	if err := checkCartUnlocked(s); err != nil {
		return nil, err
	}

	product, err := c.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	revert, err := c.revertFor(ctx, s, productID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Cart().Dispatch(ctx, cart.AddItem{Item: model.CartItemFromProduct(*product, quantity)}); err != nil {
		return nil, err
	}

	syncErr := c.backend.AddCartItem(ctx, s, productID, quantity)
	return c.settle(ctx, s, "add", []string{productID}, syncErr, nil, revert)
}

// UpdateQuantity sets a line's quantity. Zero or less removes the line.
func (c *cartService) UpdateQuantity(ctx context.Context, s *session.Session, productID string, quantity int) (*model.CartView, error) {
	if quantity <= 0 {
		return c.RemoveItem(ctx, s, productID)
	}
	if quantity > model.MaxQuantity {
		return nil, model.ErrInvalidQuantity
	}
	if err := checkCartUnlocked(s); err != nil {
		return nil, err
	}

	revert, err := c.revertFor(ctx, s, productID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Cart().Dispatch(ctx, cart.UpdateQuantity{ProductID: productID, Quantity: quantity}); err != nil {
		return nil, err
	}

	syncErr := c.backend.UpdateCartItem(ctx, s, productID, quantity)
	return c.settle(ctx, s, "update", []string{productID}, syncErr, nil, revert)
}

// RemoveItem marks the line pending and drops it once the backend confirms.
func (c *cartService) RemoveItem(ctx context.Context, s *session.Session, productID string) (*model.CartView, error) {
	if err := checkCartUnlocked(s); err != nil {
		return nil, err
	}

	state, err := s.Cart().Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	if _, ok := state.Item(productID); !ok {
		return nil, model.ErrItemNotInCart
	}

	if _, err := s.Cart().Dispatch(ctx, cart.MarkSynced{ProductID: productID, Status: model.SyncPending}); err != nil {
		return nil, err
	}

	syncErr := c.backend.RemoveCartItem(ctx, s, productID)
	return c.settle(ctx, s, "remove", []string{productID}, syncErr, cart.RemoveItem{ProductID: productID}, nil)
}

// Clear empties the cart. Clearing an empty cart does nothing.
func (c *cartService) Clear(ctx context.Context, s *session.Session) (*model.CartView, error) {
	if err := checkCartUnlocked(s); err != nil {
		return nil, err
	}

	state, err := s.Cart().Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	if len(state.Items) == 0 {
		return c.view(s, state), nil
	}

	ids := make([]string, len(state.Items))
	for i, item := range state.Items {
		ids[i] = item.ProductID
		if _, err := s.Cart().Dispatch(ctx, cart.MarkSynced{ProductID: item.ProductID, Status: model.SyncPending}); err != nil {
			return nil, err
		}
	}

	syncErr := c.backend.ClearCart(ctx, s)
	return c.settle(ctx, s, "clear", ids, syncErr, cart.Clear{}, nil)
}

func (c *cartService) Sync(ctx context.Context, s *session.Session) error {
	items, err := c.backend.GetCart(ctx, s)
	if err != nil {
		c.metrics.CartSyncFailed(ctx, "sync")
		return fmt.Errorf("failed to sync cart: %w", err)
	}

	if _, err := s.Cart().Dispatch(ctx, cart.ReplaceItems{Items: items}); err != nil {
		return err
	}

	c.logger.Debug().
		Str("session_id", s.ID().String()).
		Int("item_count", len(items)).
		Msg("cart synced from backend")

	persist(ctx, c.store, s, c.logger)
	return nil
}

// settle records the backend's answer for the given lines. On success the
// optional onSuccess action runs, otherwise the lines are marked confirmed.
// On failure the optional onFailure action undoes the local change;
// without one the lines are marked failed and stay visible.
func (c *cartService) settle(
	ctx context.Context,
	s *session.Session,
	op string,
	productIDs []string,
	syncErr error,
	onSuccess cart.Action,
	onFailure cart.Action,
) (*model.CartView, error) {
	if syncErr == nil {
		if onSuccess != nil {
			if _, err := s.Cart().Dispatch(ctx, onSuccess); err != nil {
				return nil, err
			}
		} else {
			for _, id := range productIDs {
				if _, err := s.Cart().Dispatch(ctx, cart.MarkSynced{ProductID: id, Status: model.SyncConfirmed}); err != nil {
					return nil, err
				}
			}
		}
	} else {
		if onFailure != nil {
			if _, err := s.Cart().Dispatch(ctx, onFailure); err != nil {
				return nil, err
			}
		} else {
			for _, id := range productIDs {
				if _, err := s.Cart().Dispatch(ctx, cart.MarkSynced{ProductID: id, Status: model.SyncFailed}); err != nil {
					return nil, err
				}
			}
		}
		c.metrics.CartSyncFailed(ctx, op)
		c.logger.Warn().
			Err(syncErr).
			Str("session_id", s.ID().String()).
			Str("operation", op).
			Strs("product_ids", productIDs).
			Msg("cart change not mirrored to backend")
	}

	persist(ctx, c.store, s, c.logger)

	if syncErr != nil {
		if errors.Is(syncErr, model.ErrSessionExpired) {
			return nil, syncErr
		}
		return nil, fmt.Errorf("%s: %w", syncFailures[op], syncErr)
	}

	state, err := s.Cart().Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	return c.view(s, state), nil
}

// revertFor captures the line for productID as it is now, so a change the
// backend rejects can be undone.
func (c *cartService) revertFor(ctx context.Context, s *session.Session, productID string) (cart.RevertLine, error) {
	state, err := s.Cart().Snapshot(ctx)
	if err != nil {
		return cart.RevertLine{}, fmt.Errorf("failed to read cart: %w", err)
	}
	revert := cart.RevertLine{ProductID: productID}
	if item, ok := state.Item(productID); ok {
		revert.Previous = &item
	}
	return revert, nil
}

// checkCartUnlocked rejects cart changes while an online payment for the
// current cart is awaiting confirmation.
func checkCartUnlocked(s *session.Session) error {
	if cs := s.Checkout(); cs != nil && cs.PendingPayment() != nil {
		return model.ErrPaymentPending
	}
	return nil
}

// view computes totals, applying the checkout coupon when one is in progress.
func (c *cartService) view(s *session.Session, state cart.State) *model.CartView {
	var coupon *model.Coupon
	if cs := s.Checkout(); cs != nil {
		coupon = cs.Coupon()
	}
	return &model.CartView{
		Items:     state.Items,
		ItemCount: state.ItemCount(),
		Totals:    c.calc.Calculate(state.Items, coupon),
	}
}
