package model

import (
	"time"
)

// OrderStatus is the backend lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Cancellable reports whether an order in this status may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed || s == OrderStatusProcessing
}

// PaymentMethod selects how an order is paid.
type PaymentMethod string

const (
	PaymentOnline         PaymentMethod = "online"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// ParsePaymentMethod validates a raw payment method value.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch PaymentMethod(raw) {
	case PaymentOnline, PaymentCashOnDelivery:
		return PaymentMethod(raw), nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}

// Order represents a customer order owned by the backend.
type Order struct {
	ID              string          `json:"id"`
	Items           []OrderLine     `json:"items"`
	TotalAmount     int64           `json:"totalAmount"`
	Status          OrderStatus     `json:"status"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	PaymentDetails  *PaymentDetails `json:"paymentDetails,omitempty"`
	ShippingAddress *Address        `json:"shippingAddress,omitempty"`
	TrackingInfo    *TrackingInfo   `json:"trackingInfo,omitempty"`
	CouponCode      string          `json:"couponCode,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// OrderLine is an item as recorded on an order.
type OrderLine struct {
	ProductID string `json:"productId"`
	Name      string `json:"name,omitempty"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price,omitempty"`
}

// PaymentDetails records the gateway payment attached to an order.
type PaymentDetails struct {
	Status         string `json:"status"`
	PaymentID      string `json:"paymentId,omitempty"`
	GatewayOrderID string `json:"gatewayOrderId,omitempty"`
}

// TrackingInfo carries shipment tracking data.
type TrackingInfo struct {
	Carrier        string `json:"carrier,omitempty"`
	TrackingNumber string `json:"trackingNumber,omitempty"`
	URL            string `json:"url,omitempty"`
}

// OrderItemRequest represents a single item in an order request.
type OrderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// OrderRequest represents the payload sent to the backend to create an order.
type OrderRequest struct {
	AddressID     string             `json:"addressId"`
	PaymentMethod PaymentMethod      `json:"paymentMethod"`
	Items         []OrderItemRequest `json:"items"`
	CouponCode    string             `json:"couponCode,omitempty"`
	DeliveryNotes string             `json:"deliveryNotes,omitempty"`
	TotalAmount   int64              `json:"totalAmount"`
}

// PaymentHandoff carries what the client needs to open the gateway checkout widget.
type PaymentHandoff struct {
	OrderID        string `json:"orderId"`
	GatewayOrderID string `json:"gatewayOrderId"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	KeyID          string `json:"keyId"`
}

// PaymentCallback is the gateway's confirmed-payment callback as relayed by the client.
type PaymentCallback struct {
	GatewayOrderID string `json:"gatewayOrderId"`
	PaymentID      string `json:"paymentId"`
	Signature      string `json:"signature"`
}

// PlaceOrderResult tells the client what happens after submission.
type PlaceOrderResult struct {
	Order         *Order          `json:"order"`
	Payment       *PaymentHandoff `json:"payment,omitempty"`
	Message       string          `json:"message,omitempty"`
	Redirect      string          `json:"redirect,omitempty"`
	RedirectDelay int64           `json:"redirectDelayMs,omitempty"`
}
