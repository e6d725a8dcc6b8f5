package backend

import (
	"context"
	"net/http"

	"bihar-bazaar/internal/model"
)

// GatewayOrder is the payment gateway order created for a storefront order.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CreatePaymentOrder opens a gateway order for amount in minor units.
func (c *Client) CreatePaymentOrder(ctx context.Context, creds Credentials, orderID string, amount int64, currency string) (*GatewayOrder, error) {
	body := map[string]any{
		"orderId":  orderID,
		"amount":   amount,
		"currency": currency,
	}
	var gw GatewayOrder
	if err := c.do(ctx, creds, http.MethodPost, "/payments/create-order", body, &gw); err != nil {
		return nil, err
	}
	return &gw, nil
}

// VerifyPayment checks the gateway signature of a completed payment.
func (c *Client) VerifyPayment(ctx context.Context, creds Credentials, cb model.PaymentCallback) (bool, error) {
	var resp struct {
		Verified bool `json:"verified"`
	}
	if err := c.do(ctx, creds, http.MethodPost, "/payments/verify", cb, &resp); err != nil {
		return false, err
	}
	return resp.Verified, nil
}
