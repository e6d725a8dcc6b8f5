package backend

import (
	"context"
	"net/http"

	"bihar-bazaar/internal/model"
)

func (c *Client) ListAddresses(ctx context.Context, creds Credentials) ([]model.Address, error) {
	var addresses []model.Address
	if err := c.do(ctx, creds, http.MethodGet, "/users/addresses", nil, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (c *Client) CreateAddress(ctx context.Context, creds Credentials, req model.AddressRequest) (*model.Address, error) {
	var address model.Address
	if err := c.do(ctx, creds, http.MethodPost, "/users/addresses", req, &address); err != nil {
		return nil, err
	}
	return &address, nil
}
