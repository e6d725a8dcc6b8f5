package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"bihar-bazaar/internal/model"

	"github.com/go-chi/chi/v5"
)

const (
	testOTP          = "123456"
	testRefreshToken = "refresh-token"
)

// fakeBackend is an in-memory storefront REST backend for a single user.
type fakeBackend struct {
	mu sync.Mutex

	products    []model.Product
	knownPhones map[string]bool
	accessToken string
	tokenSeq    int
	refreshes   int
	revoked     bool

	cart      []model.CartItem
	addresses []model.Address
	orders    map[string]*model.Order
	orderSeq  int
	payments  map[string]model.PaymentDetails
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()

	f := &fakeBackend{
		products: []model.Product{
			{ID: "madhubani-1", Name: "Madhubani Painting", Price: 1000, Category: "handicrafts", ArtisanName: "Sita Devi", Stock: 5},
			{ID: "pickle-1", Name: "Mango Pickle", Price: 500, Category: "pickles", ArtisanName: "Kamla Devi", Stock: 20},
		},
		knownPhones: map[string]bool{"+919876543210": true},
		orders:      make(map[string]*model.Order),
		payments:    make(map[string]model.PaymentDetails),
	}

	r := chi.NewRouter()
	r.Get("/products", f.listProducts)
	r.Get("/products/{id}", f.getProduct)
	r.Post("/auth/check-user", f.checkUser)
	r.Post("/auth/send-otp", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Post("/auth/verify-otp", f.verifyOTP)
	r.Post("/auth/refresh-token", f.refreshToken)

	r.Group(func(r chi.Router) {
		r.Use(f.requireToken)
		r.Patch("/auth/profile", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
		r.Get("/cart", f.getCart)
		r.Post("/cart", f.addCartItem)
		r.Patch("/cart/{id}", f.updateCartItem)
		r.Delete("/cart/{id}", f.removeCartItem)
		r.Delete("/cart", f.clearCart)
		r.Get("/users/addresses", f.listAddresses)
		r.Post("/users/addresses", f.createAddress)
		r.Post("/orders", f.createOrder)
		r.Get("/orders", f.listOrders)
		r.Get("/orders/{id}", f.getOrder)
		r.Patch("/orders/{id}/status", f.updateOrderStatus)
		r.Patch("/orders/{id}/payment", f.recordPayment)
		r.Post("/payments/create-order", f.createPaymentOrder)
		r.Post("/payments/verify", f.verifyPayment)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return f, srv
}

// rotateAccessToken invalidates the issued access token so the next
// authenticated call has to refresh.
func (f *fakeBackend) rotateAccessToken() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenSeq++
	f.accessToken = fmt.Sprintf("access-%d", f.tokenSeq)
}

// revokeRefreshToken makes every refresh attempt fail.
func (f *fakeBackend) revokeRefreshToken() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = true
}

func (f *fakeBackend) issueToken() model.Tokens {
	f.tokenSeq++
	f.accessToken = fmt.Sprintf("access-%d", f.tokenSeq)
	return model.Tokens{AccessToken: f.accessToken, RefreshToken: testRefreshToken}
}

func (f *fakeBackend) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		valid := f.accessToken != "" && r.Header.Get("Authorization") == "Bearer "+f.accessToken
		f.mu.Unlock()
		if !valid {
			writeBody(w, http.StatusUnauthorized, map[string]string{"message": "token expired"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *fakeBackend) product(id string) (model.Product, bool) {
	for _, p := range f.products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

func (f *fakeBackend) listProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	out := []model.Product{}
	for _, p := range f.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	writeBody(w, http.StatusOK, out)
}

func (f *fakeBackend) getProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := f.product(chi.URLParam(r, "id"))
	if !ok {
		writeBody(w, http.StatusNotFound, map[string]string{"message": "product not found"})
		return
	}
	writeBody(w, http.StatusOK, p)
}

func (f *fakeBackend) checkUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber string `json:"phoneNumber"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()
	writeBody(w, http.StatusOK, map[string]bool{"isNewUser": !f.knownPhones[req.PhoneNumber]})
}

func (f *fakeBackend) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber string `json:"phoneNumber"`
		OTP         string `json:"otp"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.OTP != testOTP {
		writeBody(w, http.StatusBadRequest, map[string]string{"message": "Invalid OTP"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.knownPhones[req.PhoneNumber] = true
	writeBody(w, http.StatusOK, f.issueToken())
}

func (f *fakeBackend) refreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.revoked || req.RefreshToken != testRefreshToken {
		writeBody(w, http.StatusUnauthorized, map[string]string{"message": "invalid refresh token"})
		return
	}
	f.refreshes++
	writeBody(w, http.StatusOK, f.issueToken())
}

type cartLine struct {
	ProductID   string `json:"productId"`
	Quantity    int    `json:"quantity"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Category    string `json:"category"`
	ArtisanName string `json:"artisanName"`
	ImageURL    string `json:"imageUrl"`
}

func (f *fakeBackend) getCart(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	lines := make([]cartLine, 0, len(f.cart))
	for _, it := range f.cart {
		lines = append(lines, cartLine{
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			Name:        it.Name,
			Price:       it.UnitPrice,
			Category:    it.Category,
			ArtisanName: it.ArtisanName,
			ImageURL:    it.ImageRef,
		})
	}
	writeBody(w, http.StatusOK, map[string]any{"items": lines})
}

func (f *fakeBackend) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.product(req.ProductID)
	if !ok {
		writeBody(w, http.StatusNotFound, map[string]string{"message": "product not found"})
		return
	}
	for i := range f.cart {
		if f.cart[i].ProductID == p.ID {
			f.cart[i].Quantity += req.Quantity
			w.WriteHeader(http.StatusOK)
			return
		}
	}
	f.cart = append(f.cart, model.CartItemFromProduct(p, req.Quantity))
	w.WriteHeader(http.StatusCreated)
}

func (f *fakeBackend) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.cart {
		if f.cart[i].ProductID == chi.URLParam(r, "id") {
			f.cart[i].Quantity = req.Quantity
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (f *fakeBackend) removeCartItem(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.cart[:0]
	for _, it := range f.cart {
		if it.ProductID != chi.URLParam(r, "id") {
			kept = append(kept, it)
		}
	}
	f.cart = kept
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeBackend) clearCart(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cart = nil
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeBackend) listAddresses(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeBody(w, http.StatusOK, append([]model.Address{}, f.addresses...))
}

func (f *fakeBackend) createAddress(w http.ResponseWriter, r *http.Request) {
	var req model.AddressRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()

	if req.IsDefault {
		for i := range f.addresses {
			f.addresses[i].IsDefault = false
		}
	}
	addr := model.Address{
		ID:          fmt.Sprintf("addr-%d", len(f.addresses)+1),
		Name:        req.Name,
		AddressLine: req.AddressLine,
		Landmark:    req.Landmark,
		City:        req.City,
		State:       req.State,
		Pincode:     req.Pincode,
		Country:     req.Country,
		Phone:       req.Phone,
		IsDefault:   req.IsDefault,
	}
	f.addresses = append(f.addresses, addr)
	writeBody(w, http.StatusCreated, addr)
}

func (f *fakeBackend) createOrder(w http.ResponseWriter, r *http.Request) {
	var req model.OrderRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.orderSeq++
	order := &model.Order{
		ID:            fmt.Sprintf("order-%d", f.orderSeq),
		TotalAmount:   req.TotalAmount,
		Status:        model.OrderStatusPending,
		PaymentMethod: req.PaymentMethod,
		CouponCode:    req.CouponCode,
		CreatedAt:     time.Now().UTC(),
	}
	for _, it := range req.Items {
		order.Items = append(order.Items, model.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	if addr := model.FindAddress(f.addresses, req.AddressID); addr != nil {
		copied := *addr
		order.ShippingAddress = &copied
	}
	f.orders[order.ID] = order
	f.cart = nil
	writeBody(w, http.StatusCreated, order)
}

func (f *fakeBackend) listOrders(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []model.Order{}
	for i := 1; i <= f.orderSeq; i++ {
		if o, ok := f.orders[fmt.Sprintf("order-%d", i)]; ok {
			out = append(out, *o)
		}
	}
	writeBody(w, http.StatusOK, out)
}

func (f *fakeBackend) getOrder(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.orders[chi.URLParam(r, "id")]
	if !ok {
		writeBody(w, http.StatusNotFound, map[string]string{"message": "order not found"})
		return
	}
	writeBody(w, http.StatusOK, o)
}

func (f *fakeBackend) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status model.OrderStatus `json:"status"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.orders[chi.URLParam(r, "id")]
	if !ok {
		writeBody(w, http.StatusNotFound, map[string]string{"message": "order not found"})
		return
	}
	o.Status = req.Status
	writeBody(w, http.StatusOK, o)
}

func (f *fakeBackend) recordPayment(w http.ResponseWriter, r *http.Request) {
	var details model.PaymentDetails
	_ = json.NewDecoder(r.Body).Decode(&details)

	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.orders[chi.URLParam(r, "id")]
	if !ok {
		writeBody(w, http.StatusNotFound, map[string]string{"message": "order not found"})
		return
	}
	o.PaymentDetails = &details
	o.Status = model.OrderStatusConfirmed
	w.WriteHeader(http.StatusOK)
}

func (f *fakeBackend) createPaymentOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID  string `json:"orderId"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	writeBody(w, http.StatusOK, map[string]any{
		"id":       "gw_" + strings.TrimPrefix(req.OrderID, "order-"),
		"amount":   req.Amount,
		"currency": req.Currency,
	})
}

func (f *fakeBackend) verifyPayment(w http.ResponseWriter, r *http.Request) {
	var cb model.PaymentCallback
	_ = json.NewDecoder(r.Body).Decode(&cb)

	writeBody(w, http.StatusOK, map[string]bool{"verified": cb.Signature == "valid-signature"})
}

func writeBody(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
