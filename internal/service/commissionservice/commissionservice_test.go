package commissionservice

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

var processedAt = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type mocks struct {
	items  *MockItemRepo
	users  *MockUserRepo
	ledger *MockLedgerRepo
	tx     *pg.MockTXManager
}

func NewMock(t *testing.T) (*Service, mocks) {
	ctrl := gomock.NewController(t)
	m := mocks{
		items:  NewMockItemRepo(ctrl),
		users:  NewMockUserRepo(ctrl),
		ledger: NewMockLedgerRepo(ctrl),
		tx:     pg.NewMockTXManager(ctrl),
	}
	service := New(m.items, m.users, m.ledger, m.tx, lock.NewLocalLocker())
	service.now = func() time.Time { return processedAt }
	return service, m
}

func (m mocks) expectTx() {
	m.tx.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error {
		return fn(ctx)
	})
}

func paidItem(subtotal int64) *domain.OrderedItem {
	return &domain.OrderedItem{
		ID:              5,
		ProductID:       2,
		Qty:             1,
		UnitPrice:       decimal.NewFromInt(subtotal),
		Subtotal:        decimal.NewFromInt(subtotal),
		HasDtehmSeller:  true,
		SellerID:        9,
		Paid:            true,
		CommissionState: domain.CommissionPending,
	}
}

func recordLedger(m mocks, saved *[]domain.AccountTransaction) {
	m.ledger.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tx *domain.AccountTransaction) (*domain.AccountTransaction, error) {
		tx.ID = len(*saved) + 1
		*saved = append(*saved, *tx)
		return tx, nil
	}).AnyTimes()
}

func TestProcess_DistributesTwoGenerations(t *testing.T) {
	service, m := NewMock(t)
	var saved []domain.AccountTransaction

	m.expectTx()
	m.items.EXPECT().FindItemForUpdate(gomock.Any(), 5).Return(paidItem(100000), nil)
	m.users.EXPECT().FindByID(gomock.Any(), 9).Return(&domain.User{ID: 9, Upline: domain.Upline{3, 2}}, nil)
	m.users.EXPECT().ExistingIDs(gomock.Any(), []int{3, 2}).Return(map[int]bool{3: true, 2: true}, nil)
	recordLedger(m, &saved)
	m.items.EXPECT().SaveCommission(gomock.Any(), 5, gomock.Any()).DoAndReturn(func(_ context.Context, _ int, c domain.Commission) error {
		assert.Equal(t, "15500.00", c.Total.StringFixed(2))
		assert.Equal(t, &processedAt, c.ProcessedAt)
		return nil
	})

	out, err := service.Process(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.False(t, out.AlreadyProcessed)
	require.Len(t, saved, 3)

	expected := map[int]string{9: "10000.00", 3: "3000.00", 2: "2500.00"}
	for _, tx := range saved {
		assert.Equal(t, expected[tx.UserID], tx.Amount.StringFixed(2))
		assert.Equal(t, domain.SourceCommission, tx.Source)
		assert.Equal(t, 1, tx.CreatedBy)
		require.NotNil(t, tx.OrderedItemID)
		assert.Equal(t, 5, *tx.OrderedItemID)
	}
	assert.Len(t, out.Transactions, 3)
}

func TestProcess_EntriesFollowDepth(t *testing.T) {
	for depth := 0; depth <= domain.UplineDepth; depth++ {
		service, m := NewMock(t)
		var saved []domain.AccountTransaction
		upline := chainOf(depth)

		m.expectTx()
		m.items.EXPECT().FindItemForUpdate(gomock.Any(), 5).Return(paidItem(100000), nil)
		m.users.EXPECT().FindByID(gomock.Any(), 9).Return(&domain.User{ID: 9, Upline: upline}, nil)
		if depth > 0 {
			found := make(map[int]bool)
			for _, id := range upline.Populated() {
				found[id] = true
			}
			m.users.EXPECT().ExistingIDs(gomock.Any(), upline.Populated()).Return(found, nil)
		}
		recordLedger(m, &saved)
		m.items.EXPECT().SaveCommission(gomock.Any(), 5, gomock.Any()).Return(nil)

		out, err := service.Process(context.Background(), 0, 5)
		require.NoError(t, err, "depth %d", depth)
		assert.Len(t, saved, depth+1, "depth %d", depth)

		sum := decimal.Zero
		for _, tx := range saved {
			sum = sum.Add(tx.Amount)
		}
		assert.True(t, sum.Equal(out.Commission.Total), "depth %d", depth)
	}
}

func TestProcess_AlreadyProcessedIsNoop(t *testing.T) {
	service, m := NewMock(t)
	item := paidItem(100000)
	item.CommissionState = domain.CommissionProcessed
	item.Commission.Total = decimal.NewFromInt(15500)

	m.expectTx()
	m.items.EXPECT().FindItemForUpdate(gomock.Any(), 5).Return(item, nil)

	out, err := service.Process(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.True(t, out.AlreadyProcessed)
	assert.Empty(t, out.Transactions)
	assert.True(t, decimal.NewFromInt(15500).Equal(out.Commission.Total))
}

func TestProcess_Failures(t *testing.T) {
	tests := []struct {
		name        string
		prepareMock func(m mocks)
		expectedErr error
	}{
		{
			name: "Item not found",
			prepareMock: func(m mocks) {
				m.items.EXPECT().FindItemForUpdate(gomock.Any(), 5).Return(nil, nil)
			},
			expectedErr: domain.ErrNotFound,
		},
		{
			name: "Unpaid item",
			prepareMock: func(m mocks) {
				item := paidItem(1000)
				item.Paid = false
				m.items.EXPECT().FindItemForUpdate(gomock.Any(), 5).Return(item, nil)
			},
			expectedErr: domain.ErrNotEligible,
		},
		{
			name: "Item without seller",
			prepareMock: func(m mocks) {
				item := paidItem(1000)
				item.HasDtehmSeller, item.SellerID = false, 0
				m.items.EXPECT().FindItemForUpdate(gomock.Any(), 5).Return(item, nil)
			},
			expectedErr: domain.ErrNotEligible,
		},
		{
			name: "Seller deleted",
			prepareMock: func(m mocks) {
				m.items.EXPECT().FindItemForUpdate(gomock.Any(), 5).Return(paidItem(1000), nil)
				m.users.EXPECT().FindByID(gomock.Any(), 9).Return(nil, nil)
			},
			expectedErr: domain.ErrUnknownUser,
		},
		{
			name: "Upline member deleted",
			prepareMock: func(m mocks) {
				m.items.EXPECT().FindItemForUpdate(gomock.Any(), 5).Return(paidItem(1000), nil)
				m.users.EXPECT().FindByID(gomock.Any(), 9).Return(&domain.User{ID: 9, Upline: domain.Upline{3, 2}}, nil)
				m.users.EXPECT().ExistingIDs(gomock.Any(), []int{3, 2}).Return(map[int]bool{3: true}, nil)
			},
			expectedErr: domain.ErrUnknownUser,
		},
		{
			name: "Ledger write fails",
			prepareMock: func(m mocks) {
				m.items.EXPECT().FindItemForUpdate(gomock.Any(), 5).Return(paidItem(1000), nil)
				m.users.EXPECT().FindByID(gomock.Any(), 9).Return(&domain.User{ID: 9}, nil)
				m.ledger.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("database error"))
			},
			expectedErr: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			m.expectTx()
			tt.prepareMock(m)

			out, err := service.Process(context.Background(), 1, 5)
			assert.Nil(t, out)
			require.Error(t, err)
			var de *domain.Error
			if errors.As(tt.expectedErr, &de) {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.EqualError(t, err, tt.expectedErr.Error())
			}
		})
	}
}

func TestProcess_LockHeldElsewhere(t *testing.T) {
	ctrl := gomock.NewController(t)
	locker := lock.NewMockLocker(ctrl)
	service := New(NewMockItemRepo(ctrl), NewMockUserRepo(ctrl), NewMockLedgerRepo(ctrl), pg.NewMockTXManager(ctrl), locker)

	locker.EXPECT().Obtain(gomock.Any(), "commission:item:5", lock.DefaultTTL).Return(nil, lock.ErrNotObtained)

	_, err := service.Process(context.Background(), 1, 5)
	assert.ErrorIs(t, err, domain.ErrLocked)
}
