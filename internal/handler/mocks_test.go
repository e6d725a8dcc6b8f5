package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bihar-bazaar/internal/auth"
	"bihar-bazaar/internal/model"
	"bihar-bazaar/internal/service"
	"bihar-bazaar/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// stubSessionRepository accepts new sessions and nothing else.
type stubSessionRepository struct{}

func (stubSessionRepository) BeginTx(context.Context) (pgx.Tx, error)                    { return nil, nil }
func (stubSessionRepository) Create(context.Context, *model.Session) error               { return nil }
func (stubSessionRepository) GetByID(context.Context, uuid.UUID) (*model.Session, error) { return nil, nil }
func (stubSessionRepository) Update(context.Context, pgx.Tx, *model.Session) error       { return nil }
func (stubSessionRepository) Delete(context.Context, uuid.UUID) error                    { return nil }
func (stubSessionRepository) DeleteIdle(context.Context, time.Time, []uuid.UUID) (int64, error) {
	return 0, nil
}

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	mgr := session.NewManager(stubSessionRepository{}, nil, nil, auth.Options{}, nil, zerolog.Nop())
	t.Cleanup(mgr.Close)

	s, err := mgr.Create(context.Background())
	require.NoError(t, err)
	return s
}

// newRequest builds a request carrying s and the given chi URL params.
func newRequest(t *testing.T, method, path string, body any, s *session.Session, params map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	ctx := req.Context()
	if s != nil {
		ctx = session.NewContext(ctx, s)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) view(args mock.Arguments) (*model.CartView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartView), args.Error(1)
}

func (m *MockCartService) View(ctx context.Context, s *session.Session) (*model.CartView, error) {
	return m.view(m.Called(ctx, s))
}

func (m *MockCartService) AddItem(ctx context.Context, s *session.Session, productID string, quantity int) (*model.CartView, error) {
	return m.view(m.Called(ctx, s, productID, quantity))
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, s *session.Session, productID string, quantity int) (*model.CartView, error) {
	return m.view(m.Called(ctx, s, productID, quantity))
}

func (m *MockCartService) RemoveItem(ctx context.Context, s *session.Session, productID string) (*model.CartView, error) {
	return m.view(m.Called(ctx, s, productID))
}

func (m *MockCartService) Clear(ctx context.Context, s *session.Session) (*model.CartView, error) {
	return m.view(m.Called(ctx, s))
}

func (m *MockCartService) Sync(ctx context.Context, s *session.Session) error {
	return m.Called(ctx, s).Error(0)
}

// MockCheckoutService is a mock implementation of CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) view(args mock.Arguments) (*service.CheckoutView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CheckoutView), args.Error(1)
}

func (m *MockCheckoutService) result(args mock.Arguments) (*model.PlaceOrderResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PlaceOrderResult), args.Error(1)
}

func (m *MockCheckoutService) Begin(ctx context.Context, s *session.Session) (*service.CheckoutView, error) {
	return m.view(m.Called(ctx, s))
}

func (m *MockCheckoutService) View(ctx context.Context, s *session.Session) (*service.CheckoutView, error) {
	return m.view(m.Called(ctx, s))
}

func (m *MockCheckoutService) Discard(ctx context.Context, s *session.Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockCheckoutService) SelectAddress(ctx context.Context, s *session.Session, addressID string) (*service.CheckoutView, error) {
	return m.view(m.Called(ctx, s, addressID))
}

func (m *MockCheckoutService) SetPaymentMethod(ctx context.Context, s *session.Session, method string) (*service.CheckoutView, error) {
	return m.view(m.Called(ctx, s, method))
}

func (m *MockCheckoutService) SetDeliveryNotes(ctx context.Context, s *session.Session, notes string) (*service.CheckoutView, error) {
	return m.view(m.Called(ctx, s, notes))
}

func (m *MockCheckoutService) ApplyCoupon(ctx context.Context, s *session.Session, code string) (*service.CheckoutView, error) {
	return m.view(m.Called(ctx, s, code))
}

func (m *MockCheckoutService) RemoveCoupon(ctx context.Context, s *session.Session) (*service.CheckoutView, error) {
	return m.view(m.Called(ctx, s))
}

func (m *MockCheckoutService) Next(ctx context.Context, s *session.Session) (*service.CheckoutView, error) {
	return m.view(m.Called(ctx, s))
}

func (m *MockCheckoutService) Back(ctx context.Context, s *session.Session) (*service.CheckoutView, error) {
	return m.view(m.Called(ctx, s))
}

func (m *MockCheckoutService) PlaceOrder(ctx context.Context, s *session.Session) (*model.PlaceOrderResult, error) {
	return m.result(m.Called(ctx, s))
}

func (m *MockCheckoutService) VerifyPayment(ctx context.Context, s *session.Session, cb model.PaymentCallback) (*model.PlaceOrderResult, error) {
	return m.result(m.Called(ctx, s, cb))
}

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) List(ctx context.Context, s *session.Session) ([]model.Order, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, s *session.Session, id string) (*model.Order, error) {
	args := m.Called(ctx, s, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Cancel(ctx context.Context, s *session.Session, id string) (*model.Order, error) {
	args := m.Called(ctx, s, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

// MockAuthService is a mock implementation of AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) result(args mock.Arguments) (*service.AuthResult, auth.View, error) {
	var res *service.AuthResult
	if args.Get(0) != nil {
		res = args.Get(0).(*service.AuthResult)
	}
	return res, args.Get(1).(auth.View), args.Error(2)
}

func (m *MockAuthService) View(s *session.Session) auth.View {
	return m.Called(s).Get(0).(auth.View)
}

func (m *MockAuthService) SubmitPhone(ctx context.Context, s *session.Session, phone string) (auth.View, error) {
	args := m.Called(ctx, s, phone)
	return args.Get(0).(auth.View), args.Error(1)
}

func (m *MockAuthService) SubmitName(ctx context.Context, s *session.Session, name string) (auth.View, error) {
	args := m.Called(ctx, s, name)
	return args.Get(0).(auth.View), args.Error(1)
}

func (m *MockAuthService) EnterDigit(ctx context.Context, s *session.Session, index int, digit string) (*service.AuthResult, auth.View, error) {
	return m.result(m.Called(ctx, s, index, digit))
}

func (m *MockAuthService) SubmitOTP(ctx context.Context, s *session.Session, code string) (*service.AuthResult, auth.View, error) {
	return m.result(m.Called(ctx, s, code))
}

func (m *MockAuthService) Resend(ctx context.Context, s *session.Session) (auth.View, error) {
	args := m.Called(ctx, s)
	return args.Get(0).(auth.View), args.Error(1)
}

func (m *MockAuthService) Reset(ctx context.Context, s *session.Session) auth.View {
	return m.Called(ctx, s).Get(0).(auth.View)
}

func (m *MockAuthService) Logout(ctx context.Context, s *session.Session) error {
	return m.Called(ctx, s).Error(0)
}
