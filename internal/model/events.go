package model

import "time"

// Event types published on the order events topic.
const (
	EventOrderPlaced = "order.placed"
	EventOrderPaid   = "order.paid"
)

// OrderEvent is published when an order is submitted or its payment is confirmed.
type OrderEvent struct {
	Type          string        `json:"type"`
	OrderID       string        `json:"order_id"`
	SessionID     string        `json:"session_id"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	TotalAmount   int64         `json:"total_amount"`
	CouponCode    string        `json:"coupon_code,omitempty"`
	PaymentID     string        `json:"payment_id,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}
