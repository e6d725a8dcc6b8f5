package router

import (
	"context"
	"net/http"

	"bihar-bazaar/internal/handler"
	"bihar-bazaar/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Session  *handler.SessionHandler
	Product  *handler.ProductHandler
	Auth     *handler.AuthHandler
	Wishlist *handler.WishlistHandler
	Cart     *handler.CartHandler
	Address  *handler.AddressHandler
	Checkout *handler.CheckoutHandler
	Order    *handler.OrderHandler
}

// Options configures the router.
type Options struct {
	AllowOrigins string
	// Metrics serves /metrics when set.
	Metrics http.Handler
	// Ready reports whether dependencies are reachable. /health returns 503 when it fails.
	Ready func(ctx context.Context) error
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, sessions middleware.SessionResolver, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery -> Logging -> CORS
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(opts.AllowOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if opts.Ready != nil {
			if err := opts.Ready(r.Context()); err != nil {
				logger.Error().Err(err).Msg("readiness check failed")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status": "unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", h.Session.Create)

		r.Get("/products", h.Product.List)
		r.Get("/products/{id}", h.Product.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(sessions, logger))

			r.Get("/sessions/current", h.Session.Get)

			r.Route("/auth", func(r chi.Router) {
				r.Get("/", h.Auth.Get)
				r.Post("/phone", h.Auth.SubmitPhone)
				r.Post("/name", h.Auth.SubmitName)
				r.Post("/otp", h.Auth.SubmitOTP)
				r.Post("/otp/digit", h.Auth.EnterDigit)
				r.Post("/resend", h.Auth.Resend)
				r.Post("/reset", h.Auth.Reset)
				r.Post("/logout", h.Auth.Logout)
			})

			r.Get("/wishlist", h.Wishlist.List)
			r.Post("/wishlist", h.Wishlist.Add)
			r.Delete("/wishlist/{productId}", h.Wishlist.Remove)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(logger))

				r.Get("/cart", h.Cart.Get)
				r.Delete("/cart", h.Cart.Clear)
				r.Post("/cart/items", h.Cart.AddItem)
				r.Patch("/cart/items/{productId}", h.Cart.UpdateItem)
				r.Delete("/cart/items/{productId}", h.Cart.RemoveItem)

				r.Get("/addresses", h.Address.List)
				r.Post("/addresses", h.Address.Create)

				r.Route("/checkout", func(r chi.Router) {
					r.Post("/", h.Checkout.Begin)
					r.Get("/", h.Checkout.Get)
					r.Delete("/", h.Checkout.Discard)
					r.Put("/address", h.Checkout.SelectAddress)
					r.Put("/payment-method", h.Checkout.SetPaymentMethod)
					r.Put("/notes", h.Checkout.SetNotes)
					r.Post("/coupon", h.Checkout.ApplyCoupon)
					r.Delete("/coupon", h.Checkout.RemoveCoupon)
					r.Post("/next", h.Checkout.Next)
					r.Post("/back", h.Checkout.Back)
					r.Post("/place-order", h.Checkout.PlaceOrder)
					r.Post("/payment/verify", h.Checkout.VerifyPayment)
				})

				r.Get("/orders", h.Order.List)
				r.Get("/orders/{id}", h.Order.GetByID)
				r.Post("/orders/{id}/cancel", h.Order.Cancel)
			})
		})
	})

	return r
}
