package model

import (
	"math"
	"time"
)

// MaxQuantity caps the units of one product held in a cart line.
const MaxQuantity = 100

// SyncStatus tracks whether a local cart mutation has been mirrored to the backend.
type SyncStatus string

const (
	SyncPending   SyncStatus = "pending"
	SyncConfirmed SyncStatus = "confirmed"
	SyncFailed    SyncStatus = "failed"
)

// CartItem is a line in the cart ledger. UnitPrice is in minor currency units.
type CartItem struct {
	ProductID   string     `json:"productId" db:"product_id"`
	Name        string     `json:"name" db:"name"`
	UnitPrice   int64      `json:"unitPrice" db:"unit_price"`
	Quantity    int        `json:"quantity" db:"quantity"`
	Category    string     `json:"category" db:"category"`
	ArtisanName string     `json:"artisanName" db:"artisan_name"`
	ImageRef    string     `json:"imageRef" db:"image_ref"`
	Status      SyncStatus `json:"status" db:"sync_status"`
}

// LineTotal returns unit price multiplied by quantity, saturating at
// math.MaxInt64 instead of wrapping.
func (i CartItem) LineTotal() int64 {
	if i.UnitPrice <= 0 || i.Quantity <= 0 {
		return 0
	}
	if i.UnitPrice > math.MaxInt64/int64(i.Quantity) {
		return math.MaxInt64
	}
	return i.UnitPrice * int64(i.Quantity)
}

// CartItemFromProduct builds a cart line for the given product.
func CartItemFromProduct(p Product, quantity int) CartItem {
	return CartItem{
		ProductID:   p.ID,
		Name:        p.Name,
		UnitPrice:   p.Price,
		Quantity:    quantity,
		Category:    p.Category,
		ArtisanName: p.ArtisanName,
		ImageRef:    p.ImageURL,
	}
}

// WishlistItem is a saved product without quantity.
type WishlistItem struct {
	ProductID   string    `json:"productId" db:"product_id"`
	Name        string    `json:"name" db:"name"`
	UnitPrice   int64     `json:"unitPrice" db:"unit_price"`
	Category    string    `json:"category" db:"category"`
	ArtisanName string    `json:"artisanName" db:"artisan_name"`
	ImageRef    string    `json:"imageRef" db:"image_ref"`
	AddedAt     time.Time `json:"addedAt" db:"added_at"`
}

// WishlistItemFromProduct builds a wishlist entry for the given product.
func WishlistItemFromProduct(p Product, addedAt time.Time) WishlistItem {
	return WishlistItem{
		ProductID:   p.ID,
		Name:        p.Name,
		UnitPrice:   p.Price,
		Category:    p.Category,
		ArtisanName: p.ArtisanName,
		ImageRef:    p.ImageURL,
		AddedAt:     addedAt,
	}
}

// Coupon is a percentage discount code.
type Coupon struct {
	Code            string `json:"code"`
	DiscountPercent int    `json:"discountPercent"`
}

// Totals is the derived price breakdown of a cart.
type Totals struct {
	Subtotal int64   `json:"subtotal"`
	Shipping int64   `json:"shipping"`
	Discount int64   `json:"discount"`
	Total    int64   `json:"total"`
	Coupon   *Coupon `json:"coupon,omitempty"`
}

// CartView is the cart as shown to the client.
type CartView struct {
	Items     []CartItem `json:"items"`
	ItemCount int        `json:"itemCount"`
	Totals    Totals     `json:"totals"`
}
