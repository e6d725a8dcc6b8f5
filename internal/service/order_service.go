package service

import (
	"context"
	"errors"
	"fmt"

	"bihar-bazaar/internal/model"
	"bihar-bazaar/internal/session"

	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	backend OrderBackend
	logger  zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(backend OrderBackend, logger zerolog.Logger) OrderService {
	return &orderService{
		backend: backend,
		logger:  logger.With().Str("service", "order").Logger(),
	}
}

func (o *orderService) List(ctx context.Context, s *session.Session) ([]model.Order, error) {
	orders, err := o.backend.ListOrders(ctx, s)
	if err != nil {
		o.logger.Error().Err(err).Str("session_id", s.ID().String()).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves an order by its ID.
func (o *orderService) GetByID(ctx context.Context, s *session.Session, id string) (*model.Order, error) {
	if id == "" {
		return nil, model.ErrOrderNotFound
	}

	order, err := o.backend.GetOrder(ctx, s, id)
	if err != nil {
		o.logger.Error().Err(err).Str("order_id", id).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		o.logger.Debug().Str("order_id", id).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	return order, nil
}

// Cancel cancels an order that has not shipped yet.
func (o *orderService) Cancel(ctx context.Context, s *session.Session, id string) (*model.Order, error) {
	order, err := o.GetByID(ctx, s, id)
	if err != nil {
		return nil, err
	}

	if !order.Status.Cancellable() {
		o.logger.Warn().
			Str("order_id", id).
			Str("status", string(order.Status)).
			Msg("order cannot be cancelled")
		return nil, model.ErrOrderNotCancellable
	}

	updated, err := o.backend.UpdateOrderStatus(ctx, s, id, model.OrderStatusCancelled)
	if err != nil {
		if errors.Is(err, model.ErrSessionExpired) {
			return nil, err
		}
		o.logger.Error().Err(err).Str("order_id", id).Msg("failed to cancel order")
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	o.logger.Info().Str("order_id", id).Msg("order cancelled")
	return updated, nil
}
