package backend

import (
	"context"
	"net/http"
	"net/url"

	"bihar-bazaar/internal/model"
)

func (c *Client) CreateOrder(ctx context.Context, creds Credentials, req model.OrderRequest) (*model.Order, error) {
	var order model.Order
	if err := c.do(ctx, creds, http.MethodPost, "/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) ListOrders(ctx context.Context, creds Credentials) ([]model.Order, error) {
	var orders []model.Order
	if err := c.do(ctx, creds, http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder returns an order, or nil if it does not exist.
func (c *Client) GetOrder(ctx context.Context, creds Credentials, id string) (*model.Order, error) {
	var order model.Order
	err := c.do(ctx, creds, http.MethodGet, "/orders/"+url.PathEscape(id), nil, &order)
	if IsStatus(err, http.StatusNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, creds Credentials, id string, status model.OrderStatus) (*model.Order, error) {
	var order model.Order
	body := map[string]model.OrderStatus{"status": status}
	if err := c.do(ctx, creds, http.MethodPatch, "/orders/"+url.PathEscape(id)+"/status", body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// RecordPayment attaches verified gateway payment details to an order.
func (c *Client) RecordPayment(ctx context.Context, creds Credentials, id string, details model.PaymentDetails) error {
	return c.do(ctx, creds, http.MethodPatch, "/orders/"+url.PathEscape(id)+"/payment", details, nil)
}
