package withdrawservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/pg"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/lock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

var approvedAt = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

type mocks struct {
	repo       *MockRepo
	userRepo   *MockUserRepo
	ledgerRepo *MockLedgerRepo
	txManager  *pg.MockTXManager
}

func NewMock(t *testing.T) (*Service, mocks) {
	ctrl := gomock.NewController(t)
	m := mocks{
		repo:       NewMockRepo(ctrl),
		userRepo:   NewMockUserRepo(ctrl),
		ledgerRepo: NewMockLedgerRepo(ctrl),
		txManager:  pg.NewMockTXManager(ctrl),
	}
	service := New(m.repo, m.userRepo, m.ledgerRepo, m.txManager, lock.NewLocalLocker())
	service.now = func() time.Time { return approvedAt }
	return service, m
}

func (m mocks) passThrough() {
	m.txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error {
		return fn(ctx)
	})
}

func pending(amount int64) *domain.WithdrawRequest {
	return &domain.WithdrawRequest{ID: 5, UserID: 1, Amount: decimal.NewFromInt(amount), Status: domain.WithdrawPending}
}

func balanceOf(amount int64) *domain.Balance {
	return &domain.Balance{UserID: 1, Current: decimal.NewFromInt(amount)}
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name          string
		amount        decimal.Decimal
		prepareMock   func(m mocks)
		expectedError error
	}{
		{
			name:   "Request within balance",
			amount: decimal.NewFromInt(20000),
			prepareMock: func(m mocks) {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(&domain.User{ID: 1}, nil)
				m.ledgerRepo.EXPECT().Balance(gomock.Any(), 1).Return(balanceOf(30000), nil)
				m.repo.EXPECT().Create(gomock.Any(), &domain.WithdrawRequest{
					UserID: 1, Amount: decimal.NewFromInt(20000), Status: domain.WithdrawPending,
					BalanceBefore: decimal.NewFromInt(30000), Description: "school fees",
				}).DoAndReturn(func(_ context.Context, wr *domain.WithdrawRequest) (*domain.WithdrawRequest, error) {
					wr.ID = 5
					return wr, nil
				})
			},
		},
		{
			name:          "Zero amount",
			amount:        decimal.Zero,
			prepareMock:   func(m mocks) {},
			expectedError: domain.ErrInvalidAmount,
		},
		{
			name:   "Request above balance",
			amount: decimal.NewFromInt(50000),
			prepareMock: func(m mocks) {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(&domain.User{ID: 1}, nil)
				m.ledgerRepo.EXPECT().Balance(gomock.Any(), 1).Return(balanceOf(30000), nil)
			},
			expectedError: domain.ErrInsufficientBalance,
		},
		{
			name:   "Unknown user",
			amount: decimal.NewFromInt(1),
			prepareMock: func(m mocks) {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(nil, nil)
			},
			expectedError: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			wr, err := service.Create(context.Background(), 1, tt.amount, "school fees")
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 5, wr.ID)
			assert.True(t, wr.BalanceBefore.Equal(decimal.NewFromInt(30000)))
		})
	}
}

func TestApprove(t *testing.T) {
	t.Run("debits the ledger and links the entry", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().FindByID(gomock.Any(), 5).Return(pending(20000), nil)
		m.passThrough()
		m.repo.EXPECT().FindForUpdate(gomock.Any(), 5).Return(pending(20000), nil)
		m.userRepo.EXPECT().LockForUpdate(gomock.Any(), 1).Return(nil)
		m.ledgerRepo.EXPECT().Balance(gomock.Any(), 1).Return(balanceOf(30000), nil)
		requestID := 5
		m.ledgerRepo.EXPECT().Create(gomock.Any(), &domain.AccountTransaction{
			UserID: 1, Amount: decimal.NewFromInt(-20000), Source: domain.SourceWithdrawal,
			Description: "Withdrawal request #5", TransactionDate: approvedAt, CreatedBy: 7,
			WithdrawRequestID: &requestID,
		}).DoAndReturn(func(_ context.Context, tx *domain.AccountTransaction) (*domain.AccountTransaction, error) {
			tx.ID = 40
			return tx, nil
		})
		m.repo.EXPECT().Approve(gomock.Any(), 5, 40, 7, approvedAt).Return(nil)

		wr, err := service.Approve(context.Background(), 7, 5)
		require.NoError(t, err)
		assert.Equal(t, domain.WithdrawApproved, wr.Status)
		require.NotNil(t, wr.AccountTransactionID)
		assert.Equal(t, 40, *wr.AccountTransactionID)
		assert.Equal(t, 7, wr.ProcessedBy)
	})

	t.Run("short balance writes nothing and stays pending", func(t *testing.T) {
		service, m := NewMock(t)
		req := pending(50000)
		m.repo.EXPECT().FindByID(gomock.Any(), 5).Return(req, nil)
		m.passThrough()
		m.repo.EXPECT().FindForUpdate(gomock.Any(), 5).Return(req, nil)
		m.userRepo.EXPECT().LockForUpdate(gomock.Any(), 1).Return(nil)
		m.ledgerRepo.EXPECT().Balance(gomock.Any(), 1).Return(balanceOf(30000), nil)

		_, err := service.Approve(context.Background(), 7, 5)
		assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
		assert.Equal(t, "INSUFFICIENT_BALANCE", domain.CodeOf(err))
		assert.Equal(t, domain.WithdrawPending, req.Status)
		assert.Nil(t, req.AccountTransactionID)
	})

	t.Run("already approved", func(t *testing.T) {
		service, m := NewMock(t)
		done := pending(100)
		done.Status = domain.WithdrawApproved
		m.repo.EXPECT().FindByID(gomock.Any(), 5).Return(done, nil)

		_, err := service.Approve(context.Background(), 7, 5)
		assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	})

	t.Run("resolved by a concurrent approval", func(t *testing.T) {
		service, m := NewMock(t)
		linked := pending(100)
		txID := 3
		linked.AccountTransactionID = &txID
		m.repo.EXPECT().FindByID(gomock.Any(), 5).Return(pending(100), nil)
		m.passThrough()
		m.repo.EXPECT().FindForUpdate(gomock.Any(), 5).Return(linked, nil)

		_, err := service.Approve(context.Background(), 7, 5)
		assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	})

	t.Run("ledger failure rolls back", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().FindByID(gomock.Any(), 5).Return(pending(100), nil)
		m.passThrough()
		m.repo.EXPECT().FindForUpdate(gomock.Any(), 5).Return(pending(100), nil)
		m.userRepo.EXPECT().LockForUpdate(gomock.Any(), 1).Return(nil)
		m.ledgerRepo.EXPECT().Balance(gomock.Any(), 1).Return(balanceOf(100), nil)
		m.ledgerRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))

		_, err := service.Approve(context.Background(), 7, 5)
		assert.EqualError(t, err, "db error")
	})

	t.Run("user lock held elsewhere", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepo(ctrl)
		locker := lock.NewMockLocker(ctrl)
		service := New(repo, NewMockUserRepo(ctrl), NewMockLedgerRepo(ctrl), pg.NewMockTXManager(ctrl), locker)
		repo.EXPECT().FindByID(gomock.Any(), 5).Return(pending(100), nil)
		locker.EXPECT().Obtain(gomock.Any(), "withdraw:user:1", lock.DefaultTTL).Return(nil, lock.ErrNotObtained)

		_, err := service.Approve(context.Background(), 7, 5)
		assert.ErrorIs(t, err, domain.ErrLocked)
	})

	t.Run("not found", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().FindByID(gomock.Any(), 5).Return(nil, nil)

		_, err := service.Approve(context.Background(), 7, 5)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestReject(t *testing.T) {
	t.Run("rejects without touching the ledger", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().FindByID(gomock.Any(), 5).Return(pending(100), nil)
		m.repo.EXPECT().Reject(gomock.Any(), 5, 7, "duplicate request", approvedAt).Return(nil)

		wr, err := service.Reject(context.Background(), 7, 5, " duplicate request ")
		require.NoError(t, err)
		assert.Equal(t, domain.WithdrawRejected, wr.Status)
		assert.Equal(t, "duplicate request", wr.AdminNote)
		assert.Nil(t, wr.AccountTransactionID)
	})

	t.Run("reason required", func(t *testing.T) {
		service, _ := NewMock(t)
		_, err := service.Reject(context.Background(), 7, 5, "")
		assert.ErrorIs(t, err, domain.ErrReasonRequired)
	})

	t.Run("already rejected", func(t *testing.T) {
		service, m := NewMock(t)
		done := pending(100)
		done.Status = domain.WithdrawRejected
		m.repo.EXPECT().FindByID(gomock.Any(), 5).Return(done, nil)

		_, err := service.Reject(context.Background(), 7, 5, "again")
		assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	})
}
