package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"bihar-bazaar/internal/auth"
	"bihar-bazaar/internal/backend"
	"bihar-bazaar/internal/model"
	"bihar-bazaar/internal/session"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSessionRepository only needs to accept new sessions; persistence goes
// through MockSessionStore.
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	return nil, args.Error(1)
}

func (m *MockSessionRepository) Create(ctx context.Context, s *model.Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	args := m.Called(ctx, id)
	return nil, args.Error(1)
}

func (m *MockSessionRepository) Update(ctx context.Context, tx pgx.Tx, s *model.Session) error {
	return m.Called(ctx, tx, s).Error(0)
}

func (m *MockSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSessionRepository) DeleteIdle(ctx context.Context, cutoff time.Time, keep []uuid.UUID) (int64, error) {
	args := m.Called(ctx, cutoff, keep)
	return 0, args.Error(1)
}

// MockAuthAPI is a mock implementation of auth.API.
type MockAuthAPI struct {
	mock.Mock
}

func (m *MockAuthAPI) CheckUser(ctx context.Context, phone string) (bool, error) {
	args := m.Called(ctx, phone)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthAPI) SendOTP(ctx context.Context, phone, name string) error {
	return m.Called(ctx, phone, name).Error(0)
}

func (m *MockAuthAPI) VerifyOTP(ctx context.Context, phone, otp string) (model.Tokens, error) {
	args := m.Called(ctx, phone, otp)
	return args.Get(0).(model.Tokens), args.Error(1)
}

func (m *MockAuthAPI) UpdateProfile(ctx context.Context, creds backend.Credentials, name string) error {
	return m.Called(ctx, creds, name).Error(0)
}

// newTestSession returns a live session backed by mocks. api may be nil.
func newTestSession(t *testing.T, api auth.API) *session.Session {
	t.Helper()
	if api == nil {
		api = new(MockAuthAPI)
	}

	repo := new(MockSessionRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	mgr := session.NewManager(repo, nil, api, auth.Options{ResendCooldown: 30 * time.Second}, nil, zerolog.Nop())
	t.Cleanup(mgr.Close)

	s, err := mgr.Create(context.Background())
	require.NoError(t, err)
	s.UpdateTokens(model.Tokens{AccessToken: "acc", RefreshToken: "ref"})
	return s
}

// MockSessionStore is a mock implementation of SessionStore.
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Persist(ctx context.Context, s *session.Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSessionStore) Wipe(ctx context.Context, s *session.Session) error {
	return m.Called(ctx, s).Error(0)
}

func newPersistingStore() *MockSessionStore {
	store := new(MockSessionStore)
	store.On("Persist", mock.Anything, mock.Anything).Return(nil)
	return store
}

// MockCatalogBackend is a mock implementation of CatalogBackend.
type MockCatalogBackend struct {
	mock.Mock
}

func (m *MockCatalogBackend) ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockCatalogBackend) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

// MockCartBackend is a mock implementation of CartBackend.
type MockCartBackend struct {
	mock.Mock
}

func (m *MockCartBackend) GetCart(ctx context.Context, creds backend.Credentials) ([]model.CartItem, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartItem), args.Error(1)
}

func (m *MockCartBackend) AddCartItem(ctx context.Context, creds backend.Credentials, productID string, quantity int) error {
	return m.Called(ctx, creds, productID, quantity).Error(0)
}

func (m *MockCartBackend) UpdateCartItem(ctx context.Context, creds backend.Credentials, productID string, quantity int) error {
	return m.Called(ctx, creds, productID, quantity).Error(0)
}

func (m *MockCartBackend) RemoveCartItem(ctx context.Context, creds backend.Credentials, productID string) error {
	return m.Called(ctx, creds, productID).Error(0)
}

func (m *MockCartBackend) ClearCart(ctx context.Context, creds backend.Credentials) error {
	return m.Called(ctx, creds).Error(0)
}

// MockAddressBackend is a mock implementation of AddressBackend.
type MockAddressBackend struct {
	mock.Mock
}

func (m *MockAddressBackend) ListAddresses(ctx context.Context, creds backend.Credentials) ([]model.Address, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Address), args.Error(1)
}

func (m *MockAddressBackend) CreateAddress(ctx context.Context, creds backend.Credentials, req model.AddressRequest) (*model.Address, error) {
	args := m.Called(ctx, creds, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Address), args.Error(1)
}

// MockOrderBackend is a mock implementation of OrderBackend.
type MockOrderBackend struct {
	mock.Mock
}

func (m *MockOrderBackend) CreateOrder(ctx context.Context, creds backend.Credentials, req model.OrderRequest) (*model.Order, error) {
	args := m.Called(ctx, creds, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderBackend) ListOrders(ctx context.Context, creds backend.Credentials) ([]model.Order, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderBackend) GetOrder(ctx context.Context, creds backend.Credentials, id string) (*model.Order, error) {
	args := m.Called(ctx, creds, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderBackend) UpdateOrderStatus(ctx context.Context, creds backend.Credentials, id string, status model.OrderStatus) (*model.Order, error) {
	args := m.Called(ctx, creds, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderBackend) RecordPayment(ctx context.Context, creds backend.Credentials, id string, details model.PaymentDetails) error {
	return m.Called(ctx, creds, id, details).Error(0)
}

func (m *MockOrderBackend) CreatePaymentOrder(ctx context.Context, creds backend.Credentials, orderID string, amount int64, currency string) (*backend.GatewayOrder, error) {
	args := m.Called(ctx, creds, orderID, amount, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.GatewayOrder), args.Error(1)
}

func (m *MockOrderBackend) VerifyPayment(ctx context.Context, creds backend.Credentials, cb model.PaymentCallback) (bool, error) {
	args := m.Called(ctx, creds, cb)
	return args.Bool(0), args.Error(1)
}

// recordingPublisher keeps published events in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []model.OrderEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := event.(model.OrderEvent); ok {
		p.events = append(p.events, e)
	}
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
