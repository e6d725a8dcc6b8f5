// Package cart holds the per-session cart ledger and wishlist as reducer state.
package cart

import (
	"bihar-bazaar/internal/model"
)

// State is the cart ledger and wishlist of one session. Items keep insertion order.
type State struct {
	Items    []model.CartItem     `json:"items"`
	Wishlist []model.WishlistItem `json:"wishlist"`
}

// Item returns the line for productID, if present.
func (s State) Item(productID string) (model.CartItem, bool) {
	if i := s.indexOf(productID); i >= 0 {
		return s.Items[i], true
	}
	return model.CartItem{}, false
}

// InWishlist reports whether productID is saved.
func (s State) InWishlist(productID string) bool {
	return s.wishlistIndexOf(productID) >= 0
}

// ItemCount returns the total number of units in the cart.
func (s State) ItemCount() int {
	n := 0
	for _, item := range s.Items {
		n += item.Quantity
	}
	return n
}

// OrderLines maps the cart to the {productId, quantity} pairs an order request carries.
func (s State) OrderLines() []model.OrderItemRequest {
	lines := make([]model.OrderItemRequest, 0, len(s.Items))
	for _, item := range s.Items {
		lines = append(lines, model.OrderItemRequest{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines
}

// Clone returns a deep copy so callers never share backing arrays with the store.
func (s State) Clone() State {
	out := State{}
	if s.Items != nil {
		out.Items = append(make([]model.CartItem, 0, len(s.Items)), s.Items...)
	}
	if s.Wishlist != nil {
		out.Wishlist = append(make([]model.WishlistItem, 0, len(s.Wishlist)), s.Wishlist...)
	}
	return out
}

func (s State) indexOf(productID string) int {
	for i := range s.Items {
		if s.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (s State) wishlistIndexOf(productID string) int {
	for i := range s.Wishlist {
		if s.Wishlist[i].ProductID == productID {
			return i
		}
	}
	return -1
}
