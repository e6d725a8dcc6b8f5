package service

import (
	"context"

	"bihar-bazaar/internal/auth"
	"bihar-bazaar/internal/backend"
	"bihar-bazaar/internal/checkout"
	"bihar-bazaar/internal/model"
	"bihar-bazaar/internal/session"

	"github.com/rs/zerolog"
)

// ProductService reads the backend catalogue.
type ProductService interface {
	// List returns a page of products, optionally filtered by category.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// GetByID returns one product or model.ErrProductNotFound.
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// CartService manages the session cart and mirrors it to the backend.
type CartService interface {
	View(ctx context.Context, s *session.Session) (*model.CartView, error)
	AddItem(ctx context.Context, s *session.Session, productID string, quantity int) (*model.CartView, error)
	UpdateQuantity(ctx context.Context, s *session.Session, productID string, quantity int) (*model.CartView, error)
	RemoveItem(ctx context.Context, s *session.Session, productID string) (*model.CartView, error)
	Clear(ctx context.Context, s *session.Session) (*model.CartView, error)

	// Sync replaces the local ledger with the backend cart.
	Sync(ctx context.Context, s *session.Session) error
}

// WishlistService manages the session wishlist. It is local to the session.
type WishlistService interface {
	List(ctx context.Context, s *session.Session) ([]model.WishlistItem, error)
	Add(ctx context.Context, s *session.Session, productID string) ([]model.WishlistItem, error)
	Remove(ctx context.Context, s *session.Session, productID string) ([]model.WishlistItem, error)
}

// AddressService manages the signed-in user's shipping addresses.
type AddressService interface {
	List(ctx context.Context, s *session.Session) ([]model.Address, error)
	Create(ctx context.Context, s *session.Session, req model.AddressRequest) (*model.Address, error)
}

// CheckoutView is the checkout session with the cart it will order.
type CheckoutView struct {
	checkout.View
	Items  []model.CartItem `json:"items"`
	Totals model.Totals     `json:"totals"`
}

// CheckoutService drives the checkout steps and order submission.
type CheckoutService interface {
	// Begin starts a checkout, preselecting the default address.
	Begin(ctx context.Context, s *session.Session) (*CheckoutView, error)
	View(ctx context.Context, s *session.Session) (*CheckoutView, error)
	Discard(ctx context.Context, s *session.Session) error

	SelectAddress(ctx context.Context, s *session.Session, addressID string) (*CheckoutView, error)
	SetPaymentMethod(ctx context.Context, s *session.Session, method string) (*CheckoutView, error)
	SetDeliveryNotes(ctx context.Context, s *session.Session, notes string) (*CheckoutView, error)
	ApplyCoupon(ctx context.Context, s *session.Session, code string) (*CheckoutView, error)
	RemoveCoupon(ctx context.Context, s *session.Session) (*CheckoutView, error)
	Next(ctx context.Context, s *session.Session) (*CheckoutView, error)
	Back(ctx context.Context, s *session.Session) (*CheckoutView, error)

	// PlaceOrder submits the order from the review step.
	PlaceOrder(ctx context.Context, s *session.Session) (*model.PlaceOrderResult, error)

	// VerifyPayment completes an online order after the gateway callback.
	VerifyPayment(ctx context.Context, s *session.Session, cb model.PaymentCallback) (*model.PlaceOrderResult, error)
}

// AuthResult is returned once sign-in completes.
type AuthResult struct {
	Profile  model.Profile `json:"profile"`
	Redirect string        `json:"redirect"`
}

// AuthService drives the phone OTP sign-in flow of a session.
type AuthService interface {
	View(s *session.Session) auth.View
	SubmitPhone(ctx context.Context, s *session.Session, phone string) (auth.View, error)
	SubmitName(ctx context.Context, s *session.Session, name string) (auth.View, error)

	// EnterDigit returns a non-nil result when the sixth digit completed sign-in.
	EnterDigit(ctx context.Context, s *session.Session, index int, digit string) (*AuthResult, auth.View, error)
	SubmitOTP(ctx context.Context, s *session.Session, code string) (*AuthResult, auth.View, error)
	Resend(ctx context.Context, s *session.Session) (auth.View, error)
	Reset(ctx context.Context, s *session.Session) auth.View
	Logout(ctx context.Context, s *session.Session) error
}

// OrderService reads and cancels the signed-in user's orders.
type OrderService interface {
	List(ctx context.Context, s *session.Session) ([]model.Order, error)
	GetByID(ctx context.Context, s *session.Session, id string) (*model.Order, error)
	Cancel(ctx context.Context, s *session.Session, id string) (*model.Order, error)
}

// SessionStore persists and wipes sessions.
type SessionStore interface {
	Persist(ctx context.Context, s *session.Session) error
	Wipe(ctx context.Context, s *session.Session) error
}

// CatalogBackend is the part of the backend the product service calls.
type CatalogBackend interface {
	ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
}

// CartBackend is the part of the backend the cart service calls.
type CartBackend interface {
	GetCart(ctx context.Context, creds backend.Credentials) ([]model.CartItem, error)
	AddCartItem(ctx context.Context, creds backend.Credentials, productID string, quantity int) error
	UpdateCartItem(ctx context.Context, creds backend.Credentials, productID string, quantity int) error
	RemoveCartItem(ctx context.Context, creds backend.Credentials, productID string) error
	ClearCart(ctx context.Context, creds backend.Credentials) error
}

// AddressBackend is the part of the backend the address and checkout services call.
type AddressBackend interface {
	ListAddresses(ctx context.Context, creds backend.Credentials) ([]model.Address, error)
	CreateAddress(ctx context.Context, creds backend.Credentials, req model.AddressRequest) (*model.Address, error)
}

// OrderBackend is the part of the backend the order and checkout services call.
type OrderBackend interface {
	CreateOrder(ctx context.Context, creds backend.Credentials, req model.OrderRequest) (*model.Order, error)
	ListOrders(ctx context.Context, creds backend.Credentials) ([]model.Order, error)
	GetOrder(ctx context.Context, creds backend.Credentials, id string) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, creds backend.Credentials, id string, status model.OrderStatus) (*model.Order, error)
	RecordPayment(ctx context.Context, creds backend.Credentials, id string, details model.PaymentDetails) error
	CreatePaymentOrder(ctx context.Context, creds backend.Credentials, orderID string, amount int64, currency string) (*backend.GatewayOrder, error)
	VerifyPayment(ctx context.Context, creds backend.Credentials, cb model.PaymentCallback) (bool, error)
}

// persist saves the session after a mutation. The in-memory session stays
// authoritative, so a failed write is logged and the request still succeeds.
func persist(ctx context.Context, store SessionStore, s *session.Session, logger zerolog.Logger) {
	if err := store.Persist(ctx, s); err != nil {
		logger.Error().Err(err).Str("session_id", s.ID().String()).Msg("failed to persist session")
	}
}
