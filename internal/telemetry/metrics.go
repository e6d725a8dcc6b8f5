package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics holds the storefront counters.
type Metrics struct {
	ordersPlaced     metric.Int64Counter
	orderValue       metric.Int64Counter
	couponAttempts   metric.Int64Counter
	otpVerifications metric.Int64Counter
	cartSyncFailures metric.Int64Counter
	sessionsExpired  metric.Int64Counter
}

// NewMetrics creates the counters on provider.
func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter("bihar-bazaar")

	var (
		m   Metrics
		err error
	)
	if m.ordersPlaced, err = meter.Int64Counter("storefront.orders.placed",
		metric.WithDescription("Orders submitted, by payment method")); err != nil {
		return nil, err
	}
	if m.orderValue, err = meter.Int64Counter("storefront.orders.value",
		metric.WithDescription("Order totals in minor currency units"),
		metric.WithUnit("{paise}")); err != nil {
		return nil, err
	}
	if m.couponAttempts, err = meter.Int64Counter("storefront.coupons.attempts",
		metric.WithDescription("Coupon applications, by result")); err != nil {
		return nil, err
	}
	if m.otpVerifications, err = meter.Int64Counter("storefront.auth.otp_verifications",
		metric.WithDescription("OTP verification attempts, by result")); err != nil {
		return nil, err
	}
	if m.cartSyncFailures, err = meter.Int64Counter("storefront.cart.sync_failures",
		metric.WithDescription("Cart mutations the backend rejected")); err != nil {
		return nil, err
	}
	if m.sessionsExpired, err = meter.Int64Counter("storefront.sessions.expired",
		metric.WithDescription("Sessions wiped after a failed token refresh")); err != nil {
		return nil, err
	}
	return &m, nil
}

// NopMetrics returns counters that record nothing.
func NopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider())
	return m
}

func (m *Metrics) OrderPlaced(ctx context.Context, method string, total int64) {
	attrs := metric.WithAttributes(attribute.String("payment_method", method))
	m.ordersPlaced.Add(ctx, 1, attrs)
	m.orderValue.Add(ctx, total, attrs)
}

func (m *Metrics) CouponAttempt(ctx context.Context, accepted bool) {
	m.couponAttempts.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result(accepted))))
}

func (m *Metrics) OTPVerification(ctx context.Context, accepted bool) {
	m.otpVerifications.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result(accepted))))
}

func (m *Metrics) CartSyncFailed(ctx context.Context, operation string) {
	m.cartSyncFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}

func (m *Metrics) SessionExpired(ctx context.Context) {
	m.sessionsExpired.Add(ctx, 1)
}

func result(ok bool) string {
	if ok {
		return "accepted"
	}
	return "rejected"
}
