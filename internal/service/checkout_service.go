package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bihar-bazaar/internal/cart"
	"bihar-bazaar/internal/checkout"
	"bihar-bazaar/internal/coupon"
	"bihar-bazaar/internal/messaging"
	"bihar-bazaar/internal/model"
	"bihar-bazaar/internal/pricing"
	"bihar-bazaar/internal/session"
	"bihar-bazaar/internal/telemetry"

	"github.com/rs/zerolog"
)

// Redirect targets after an order is submitted.
const (
	OrdersRedirect       = "/orders"
	confirmationRedirect = "/orders/%s/confirmation"
)

// CheckoutOptions holds the checkout settings taken from configuration.
type CheckoutOptions struct {
	Currency         string
	PaymentKeyID     string
	CODRedirectDelay time.Duration
}

type checkoutService struct {
	orders    OrderBackend
	addresses AddressService
	evaluator coupon.Evaluator
	calc      *pricing.Calculator
	publisher messaging.Publisher
	store     SessionStore
	metrics   *telemetry.Metrics
	opts      CheckoutOptions
	now       func() time.Time
	logger    zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	orders OrderBackend,
	addresses AddressService,
	evaluator coupon.Evaluator,
	calc *pricing.Calculator,
	publisher messaging.Publisher,
	store SessionStore,
	metrics *telemetry.Metrics,
	opts CheckoutOptions,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		orders:    orders,
		addresses: addresses,
		evaluator: evaluator,
		calc:      calc,
		publisher: publisher,
		store:     store,
		metrics:   metrics,
		opts:      opts,
		now:       time.Now,
		logger:    logger.With().Str("service", "checkout").Logger(),
	}
}

// Begin starts a fresh checkout. An empty cart cannot be checked out.
func (c *checkoutService) Begin(ctx context.Context, s *session.Session) (*CheckoutView, error) {
	state, err := s.Cart().Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	if len(state.Items) == 0 {
		return nil, model.ErrEmptyCart
	}

	cs := checkout.NewSession()

	addresses, err := c.addresses.List(ctx, s)
	switch {
	case errors.Is(err, model.ErrSessionExpired):
		return nil, err
	case err != nil:
		// The user can still pick an address later.
		c.logger.Warn().Err(err).Str("session_id", s.ID().String()).Msg("could not preselect default address")
	default:
		if addr := model.DefaultAddress(addresses); addr != nil {
			cs.SelectAddress(addr.ID)
		}
	}

	s.BeginCheckout(cs)

	c.logger.Debug().
		Str("session_id", s.ID().String()).
		Str("address_id", cs.SelectedAddressID()).
		Msg("checkout started")

	return c.view(cs, state), nil
}

func (c *checkoutService) View(ctx context.Context, s *session.Session) (*CheckoutView, error) {
	cs, state, err := c.current(ctx, s)
	if err != nil {
		return nil, err
	}
	return c.view(cs, state), nil
}

func (c *checkoutService) Discard(ctx context.Context, s *session.Session) error {
	if s.Checkout() == nil {
		return model.ErrNoCheckout
	}
	s.EndCheckout()
	return nil
}

// SelectAddress picks a shipping address owned by the user.
func (c *checkoutService) SelectAddress(ctx context.Context, s *session.Session, addressID string) (*CheckoutView, error) {
	cs, state, err := c.current(ctx, s)
	if err != nil {
		return nil, err
	}

	addresses, err := c.addresses.List(ctx, s)
	if err != nil {
		return nil, err
	}
	if model.FindAddress(addresses, addressID) == nil {
		return nil, model.ErrAddressNotFound
	}

	cs.SelectAddress(addressID)
	return c.view(cs, state), nil
}

func (c *checkoutService) SetPaymentMethod(ctx context.Context, s *session.Session, method string) (*CheckoutView, error) {
	cs, state, err := c.current(ctx, s)
	if err != nil {
		return nil, err
	}

	m, err := model.ParsePaymentMethod(method)
	if err != nil {
		return nil, err
	}
	if err := cs.SetPaymentMethod(m); err != nil {
		return nil, err
	}
	return c.view(cs, state), nil
}

func (c *checkoutService) SetDeliveryNotes(ctx context.Context, s *session.Session, notes string) (*CheckoutView, error) {
	cs, state, err := c.current(ctx, s)
	if err != nil {
		return nil, err
	}
	cs.SetDeliveryNotes(notes)
	return c.view(cs, state), nil
}

// ApplyCoupon evaluates code and applies it. A rejected code leaves the
// applied coupon as it was.
func (c *checkoutService) ApplyCoupon(ctx context.Context, s *session.Session, code string) (*CheckoutView, error) {
	cs, state, err := c.current(ctx, s)
	if err != nil {
		return nil, err
	}

	applied, err := c.evaluator.Evaluate(ctx, code)
	c.metrics.CouponAttempt(ctx, err == nil)
	if err != nil {
		c.logger.Debug().Str("session_id", s.ID().String()).Msg("coupon rejected")
		return nil, err
	}

	cs.ApplyCoupon(applied)

	c.logger.Info().
		Str("session_id", s.ID().String()).
		Str("coupon_code", applied.Code).
		Int("discount_percent", applied.DiscountPercent).
		Msg("coupon applied")

	return c.view(cs, state), nil
}

func (c *checkoutService) RemoveCoupon(ctx context.Context, s *session.Session) (*CheckoutView, error) {
	cs, state, err := c.current(ctx, s)
	if err != nil {
		return nil, err
	}
	cs.RemoveCoupon()
	return c.view(cs, state), nil
}

func (c *checkoutService) Next(ctx context.Context, s *session.Session) (*CheckoutView, error) {
	cs, state, err := c.current(ctx, s)
	if err != nil {
		return nil, err
	}
	if _, err := cs.Advance(); err != nil {
		return nil, err
	}
	return c.view(cs, state), nil
}

func (c *checkoutService) Back(ctx context.Context, s *session.Session) (*CheckoutView, error) {
	cs, state, err := c.current(ctx, s)
	if err != nil {
		return nil, err
	}
	if _, err := cs.Back(); err != nil {
		return nil, err
	}
	return c.view(cs, state), nil
}

// PlaceOrder submits the order. Cash on delivery completes immediately;
// online payment returns a gateway handoff and waits for VerifyPayment.
// On any failure the checkout session is left as it was.
func (c *checkoutService) PlaceOrder(ctx context.Context, s *session.Session) (*model.PlaceOrderResult, error) {
	cs, state, err := c.current(ctx, s)
	if err != nil {
		return nil, err
	}
	if cs.Step() != checkout.StepReview {
		return nil, model.ErrInvalidStep
	}
	if !cs.CanPlaceOrder() {
		return nil, model.ErrAddressRequired
	}
	if len(state.Items) == 0 {
		return nil, model.ErrEmptyCart
	}

	applied := cs.Coupon()
	totals := c.calc.Calculate(state.Items, applied)

	req := model.OrderRequest{
		AddressID:     cs.SelectedAddressID(),
		PaymentMethod: cs.PaymentMethod(),
		Items:         state.OrderLines(),
		DeliveryNotes: cs.DeliveryNotes(),
		TotalAmount:   totals.Total,
	}
	if applied != nil {
		req.CouponCode = applied.Code
	}

	logger := c.logger.With().
		Str("session_id", s.ID().String()).
		Str("payment_method", string(req.PaymentMethod)).
		Logger()

	order, err := c.orders.CreateOrder(ctx, s, req)
	if err != nil {
		return nil, c.fail(logger, err, model.ErrOrderFailed, "failed to create order")
	}

	logger = logger.With().Str("order_id", order.ID).Logger()
	c.metrics.OrderPlaced(ctx, string(req.PaymentMethod), totals.Total)
	c.publish(ctx, logger, model.OrderEvent{
		Type:          model.EventOrderPlaced,
		OrderID:       order.ID,
		SessionID:     s.ID().String(),
		PaymentMethod: req.PaymentMethod,
		TotalAmount:   totals.Total,
		CouponCode:    req.CouponCode,
		Timestamp:     c.now().UTC(),
	})

	if req.PaymentMethod == model.PaymentCashOnDelivery {
		if err := c.complete(ctx, s); err != nil {
			return nil, err
		}
		logger.Info().Int64("total", totals.Total).Msg("cash on delivery order placed")

		return &model.PlaceOrderResult{
			Order:         order,
			Message:       "Order placed successfully",
			Redirect:      OrdersRedirect,
			RedirectDelay: c.opts.CODRedirectDelay.Milliseconds(),
		}, nil
	}

	gw, err := c.orders.CreatePaymentOrder(ctx, s, order.ID, totals.Total, c.opts.Currency)
	if err != nil {
		return nil, c.fail(logger, err, model.ErrOrderFailed, "failed to create payment order")
	}

	handoff := model.PaymentHandoff{
		OrderID:        order.ID,
		GatewayOrderID: gw.ID,
		Amount:         gw.Amount,
		Currency:       gw.Currency,
		KeyID:          c.opts.PaymentKeyID,
	}
	cs.SetPendingPayment(checkout.PendingPayment{Order: *order, Handoff: handoff})

	logger.Info().Str("gateway_order_id", gw.ID).Msg("awaiting online payment")

	return &model.PlaceOrderResult{
		Order:   order,
		Payment: &handoff,
	}, nil
}

// VerifyPayment confirms the gateway callback for the pending online order.
func (c *checkoutService) VerifyPayment(ctx context.Context, s *session.Session, cb model.PaymentCallback) (*model.PlaceOrderResult, error) {
	cs := s.Checkout()
	if cs == nil {
		return nil, model.ErrNoCheckout
	}
	pending := cs.PendingPayment()
	if pending == nil {
		return nil, model.ErrNoPendingPayment
	}

	logger := c.logger.With().
		Str("session_id", s.ID().String()).
		Str("order_id", pending.Order.ID).
		Logger()

	if cb.GatewayOrderID != pending.Handoff.GatewayOrderID || cb.PaymentID == "" {
		logger.Warn().Str("gateway_order_id", cb.GatewayOrderID).Msg("payment callback does not match pending order")
		return nil, model.ErrPaymentVerification
	}

	verified, err := c.orders.VerifyPayment(ctx, s, cb)
	if err != nil {
		return nil, c.fail(logger, err, model.ErrPaymentVerification, "failed to verify payment")
	}
	if !verified {
		logger.Warn().Msg("payment signature rejected")
		return nil, model.ErrPaymentVerification
	}

	details := model.PaymentDetails{
		Status:         "paid",
		PaymentID:      cb.PaymentID,
		GatewayOrderID: cb.GatewayOrderID,
	}
	if err := c.orders.RecordPayment(ctx, s, pending.Order.ID, details); err != nil {
		return nil, c.fail(logger, err, model.ErrPaymentVerification, "failed to record payment")
	}

	order := pending.Order
	order.PaymentDetails = &details

	if err := c.complete(ctx, s); err != nil {
		return nil, err
	}

	c.publish(ctx, logger, model.OrderEvent{
		Type:          model.EventOrderPaid,
		OrderID:       order.ID,
		SessionID:     s.ID().String(),
		PaymentMethod: model.PaymentOnline,
		TotalAmount:   pending.Handoff.Amount,
		PaymentID:     cb.PaymentID,
		Timestamp:     c.now().UTC(),
	})

	logger.Info().Str("payment_id", cb.PaymentID).Msg("online payment verified")

	return &model.PlaceOrderResult{
		Order:    &order,
		Message:  "Payment successful",
		Redirect: fmt.Sprintf(confirmationRedirect, order.ID),
	}, nil
}

// complete clears the cart, discards the checkout and persists the session.
func (c *checkoutService) complete(ctx context.Context, s *session.Session) error {
	if _, err := s.Cart().Dispatch(ctx, cart.Clear{}); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	s.EndCheckout()
	persist(ctx, c.store, s, c.logger)
	return nil
}

// fail logs the cause and returns the user-facing error. An expired session
// is passed through so the caller can sign the user out.
func (c *checkoutService) fail(logger zerolog.Logger, cause error, userErr *model.DomainError, msg string) error {
	if errors.Is(cause, model.ErrSessionExpired) {
		return cause
	}
	logger.Error().Err(cause).Msg(msg)
	return userErr
}

func (c *checkoutService) publish(ctx context.Context, logger zerolog.Logger, event model.OrderEvent) {
	if err := c.publisher.Publish(ctx, event.OrderID, event); err != nil {
		logger.Warn().Err(err).Str("event_type", event.Type).Msg("failed to publish order event")
	}
}

func (c *checkoutService) current(ctx context.Context, s *session.Session) (*checkout.Session, cart.State, error) {
	cs := s.Checkout()
	if cs == nil {
		return nil, cart.State{}, model.ErrNoCheckout
	}
	state, err := s.Cart().Snapshot(ctx)
	if err != nil {
		return nil, cart.State{}, fmt.Errorf("failed to read cart: %w", err)
	}
	return cs, state, nil
}

func (c *checkoutService) view(cs *checkout.Session, state cart.State) *CheckoutView {
	return &CheckoutView{
		View:   cs.View(),
		Items:  state.Items,
		Totals: c.calc.Calculate(state.Items, cs.Coupon()),
	}
}
