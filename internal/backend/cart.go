package backend

import (
	"context"
	"net/http"
	"net/url"

	"bihar-bazaar/internal/model"
)

type cartLine struct {
	ProductID   string `json:"productId"`
	Quantity    int    `json:"quantity"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Category    string `json:"category"`
	ArtisanName string `json:"artisanName"`
	ImageURL    string `json:"imageUrl"`
}

// GetCart returns the authoritative cart of the signed-in user.
func (c *Client) GetCart(ctx context.Context, creds Credentials) ([]model.CartItem, error) {
	var resp struct {
		Items []cartLine `json:"items"`
	}
	if err := c.do(ctx, creds, http.MethodGet, "/cart", nil, &resp); err != nil {
		return nil, err
	}

	items := make([]model.CartItem, 0, len(resp.Items))
	for _, l := range resp.Items {
		items = append(items, model.CartItem{
			ProductID:   l.ProductID,
			Name:        l.Name,
			UnitPrice:   l.Price,
			Quantity:    l.Quantity,
			Category:    l.Category,
			ArtisanName: l.ArtisanName,
			ImageRef:    l.ImageURL,
		})
	}
	return items, nil
}

func (c *Client) AddCartItem(ctx context.Context, creds Credentials, productID string, quantity int) error {
	body := map[string]any{"productId": productID, "quantity": quantity}
	return c.do(ctx, creds, http.MethodPost, "/cart", body, nil)
}

func (c *Client) UpdateCartItem(ctx context.Context, creds Credentials, productID string, quantity int) error {
	body := map[string]int{"quantity": quantity}
	return c.do(ctx, creds, http.MethodPatch, "/cart/"+url.PathEscape(productID), body, nil)
}

func (c *Client) RemoveCartItem(ctx context.Context, creds Credentials, productID string) error {
	return c.do(ctx, creds, http.MethodDelete, "/cart/"+url.PathEscape(productID), nil, nil)
}

func (c *Client) ClearCart(ctx context.Context, creds Credentials) error {
	return c.do(ctx, creds, http.MethodDelete, "/cart", nil, nil)
}
