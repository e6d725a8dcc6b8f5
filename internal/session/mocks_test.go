package session

import (
	"context"
	"time"

	"bihar-bazaar/internal/backend"
	"bihar-bazaar/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionRepository) Create(ctx context.Context, s *model.Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockSessionRepository) Update(ctx context.Context, tx pgx.Tx, s *model.Session) error {
	return m.Called(ctx, tx, s).Error(0)
}

func (m *MockSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSessionRepository) DeleteIdle(ctx context.Context, cutoff time.Time, keep []uuid.UUID) (int64, error) {
	args := m.Called(ctx, cutoff, keep)
	return args.Get(0).(int64), args.Error(1)
}

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) ReplaceCartItems(ctx context.Context, tx pgx.Tx, id uuid.UUID, items []model.CartItem) error {
	return m.Called(ctx, tx, id, items).Error(0)
}

func (m *MockLedgerRepository) ReplaceWishlist(ctx context.Context, tx pgx.Tx, id uuid.UUID, items []model.WishlistItem) error {
	return m.Called(ctx, tx, id, items).Error(0)
}

func (m *MockLedgerRepository) GetCartItems(ctx context.Context, id uuid.UUID) ([]model.CartItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartItem), args.Error(1)
}

func (m *MockLedgerRepository) GetWishlist(ctx context.Context, id uuid.UUID) ([]model.WishlistItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WishlistItem), args.Error(1)
}

// stubAPI satisfies auth.API; manager tests never drive the sign-in flow.
type stubAPI struct{}

func (stubAPI) CheckUser(context.Context, string) (bool, error) { return false, nil }
func (stubAPI) SendOTP(context.Context, string, string) error   { return nil }
func (stubAPI) VerifyOTP(context.Context, string, string) (model.Tokens, error) {
	return model.Tokens{}, nil
}
func (stubAPI) UpdateProfile(context.Context, backend.Credentials, string) error { return nil }

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit(ctx context.Context) error   { return m.Called(ctx).Error(0) }
func (m *MockTx) Rollback(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }
