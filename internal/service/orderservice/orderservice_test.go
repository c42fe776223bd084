package orderservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service/commissionservice"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

const validNumber = "79927398713"

type mocks struct {
	repo       *MockRepo
	products   *MockProductRepo
	users      *MockUserRepo
	commission *MockCommissionService
}

func NewMock(t *testing.T) (*Service, mocks) {
	ctrl := gomock.NewController(t)
	m := mocks{
		repo:       NewMockRepo(ctrl),
		products:   NewMockProductRepo(ctrl),
		users:      NewMockUserRepo(ctrl),
		commission: NewMockCommissionService(ctrl),
	}
	service := New(m.repo, m.products, m.users, m.commission)
	service.now = func() time.Time { return time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC) }
	return service, m
}

func TestCreateOrder(t *testing.T) {
	service, m := NewMock(t)

	tests := []struct {
		name          string
		userID        int
		orderNumber   string
		prepareMock   func()
		expectedError error
	}{
		{
			name:          "Invalid order number",
			userID:        1,
			orderNumber:   "12345",
			prepareMock:   func() {},
			expectedError: domain.ErrInvalidOrderNumber,
		},
		{
			name:        "Order already exists by the same user",
			userID:      1,
			orderNumber: validNumber,
			prepareMock: func() {
				m.repo.EXPECT().FindByOrderNumber(gomock.Any(), validNumber).Return(&domain.Order{UserID: 1}, nil)
			},
			expectedError: ErrOrderAlreadyExistsByUser,
		},
		{
			name:        "Order already exists by another user",
			userID:      2,
			orderNumber: validNumber,
			prepareMock: func() {
				m.repo.EXPECT().FindByOrderNumber(gomock.Any(), validNumber).Return(&domain.Order{UserID: 1}, nil)
			},
			expectedError: domain.ErrDuplicate,
		},
		{
			name:        "Unknown customer",
			userID:      3,
			orderNumber: validNumber,
			prepareMock: func() {
				m.repo.EXPECT().FindByOrderNumber(gomock.Any(), validNumber).Return(nil, nil)
				m.users.EXPECT().FindByID(gomock.Any(), 3).Return(nil, nil)
			},
			expectedError: domain.ErrNotFound,
		},
		{
			name:        "New order is created successfully",
			userID:      1,
			orderNumber: validNumber,
			prepareMock: func() {
				m.repo.EXPECT().FindByOrderNumber(gomock.Any(), validNumber).Return(nil, nil)
				m.users.EXPECT().FindByID(gomock.Any(), 1).Return(&domain.User{ID: 1}, nil)
				m.repo.EXPECT().CreateOrder(gomock.Any(), &domain.Order{UserID: 1, OrderNumber: validNumber}).
					Return(&domain.Order{ID: 4, UserID: 1, OrderNumber: validNumber}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			order, err := service.CreateOrder(context.Background(), 7, tt.userID, tt.orderNumber)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 4, order.ID)
		})
	}
}

func TestCreateItem(t *testing.T) {
	service, m := NewMock(t)
	product := &domain.Product{ID: 2, Price: decimal.NewFromInt(5000)}

	t.Run("defaults price and resolves seller", func(t *testing.T) {
		m.products.EXPECT().FindByID(gomock.Any(), 2).Return(product, nil)
		m.users.EXPECT().FindByMemberID(gomock.Any(), "DTEHM009").Return(&domain.User{ID: 9}, nil)
		m.repo.EXPECT().CreateItem(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, it *domain.OrderedItem) (*domain.OrderedItem, error) {
			it.ID = 5
			return it, nil
		})

		item, err := service.CreateItem(context.Background(), 7, NewItem{ProductID: 2, Qty: 3, SellerMemberID: "DTEHM009"})
		require.NoError(t, err)
		assert.Equal(t, "15000", item.Subtotal.String())
		assert.True(t, item.UnitPrice.Equal(product.Price))
		assert.True(t, item.HasDtehmSeller)
		assert.Equal(t, 9, item.SellerID)
		assert.False(t, item.Paid)
		assert.Equal(t, domain.CommissionPending, item.CommissionState)
		assert.True(t, item.Commission.Total.IsZero())
	})

	t.Run("explicit unit price wins", func(t *testing.T) {
		m.products.EXPECT().FindByID(gomock.Any(), 2).Return(product, nil)
		m.repo.EXPECT().CreateItem(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, it *domain.OrderedItem) (*domain.OrderedItem, error) {
			return it, nil
		})

		item, err := service.CreateItem(context.Background(), 7, NewItem{ProductID: 2, Qty: 2, UnitPrice: decimal.NewFromInt(4500)})
		require.NoError(t, err)
		assert.Equal(t, "9000", item.Subtotal.String())
		assert.False(t, item.HasDtehmSeller)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := service.CreateItem(context.Background(), 7, NewItem{ProductID: 2, Qty: 0})
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	})

	t.Run("unknown product", func(t *testing.T) {
		m.products.EXPECT().FindByID(gomock.Any(), 99).Return(nil, nil)
		_, err := service.CreateItem(context.Background(), 7, NewItem{ProductID: 99, Qty: 1})
		assert.ErrorIs(t, err, domain.ErrUnknownProduct)
	})

	t.Run("unknown seller", func(t *testing.T) {
		m.products.EXPECT().FindByID(gomock.Any(), 2).Return(product, nil)
		m.users.EXPECT().FindByMemberID(gomock.Any(), "DTEHM404").Return(nil, nil)
		_, err := service.CreateItem(context.Background(), 7, NewItem{ProductID: 2, Qty: 1, SellerMemberID: "DTEHM404"})
		assert.ErrorIs(t, err, domain.ErrUnknownSeller)
	})
}

func TestMarkItemPaid(t *testing.T) {
	paidAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	t.Run("pays and distributes commission", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().FindItem(gomock.Any(), 5).Return(&domain.OrderedItem{ID: 5, HasDtehmSeller: true, SellerID: 9}, nil)
		m.repo.EXPECT().MarkItemPaid(gomock.Any(), 5, paidAt).Return(true, nil)
		m.commission.EXPECT().Process(gomock.Any(), 7, 5).Return(&commissionservice.Outcome{ItemID: 5}, nil)

		out, err := service.MarkItemPaid(context.Background(), 7, 5)
		require.NoError(t, err)
		assert.True(t, out.Item.Paid)
		require.NotNil(t, out.Commission)
		assert.Empty(t, out.CommissionError)
	})

	t.Run("already paid item is not paid twice", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().FindItem(gomock.Any(), 5).Return(&domain.OrderedItem{ID: 5, Paid: true, HasDtehmSeller: true, SellerID: 9}, nil)
		m.commission.EXPECT().Process(gomock.Any(), 7, 5).Return(&commissionservice.Outcome{ItemID: 5, AlreadyProcessed: true}, nil)

		out, err := service.MarkItemPaid(context.Background(), 7, 5)
		require.NoError(t, err)
		assert.True(t, out.Commission.AlreadyProcessed)
	})

	t.Run("item without seller skips commission", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().FindItem(gomock.Any(), 5).Return(&domain.OrderedItem{ID: 5}, nil)
		m.repo.EXPECT().MarkItemPaid(gomock.Any(), 5, paidAt).Return(true, nil)

		out, err := service.MarkItemPaid(context.Background(), 7, 5)
		require.NoError(t, err)
		assert.Nil(t, out.Commission)
	})

	t.Run("commission failure keeps payment", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().FindItem(gomock.Any(), 5).Return(&domain.OrderedItem{ID: 5, HasDtehmSeller: true, SellerID: 9}, nil)
		m.repo.EXPECT().MarkItemPaid(gomock.Any(), 5, paidAt).Return(true, nil)
		m.commission.EXPECT().Process(gomock.Any(), 7, 5).Return(nil, domain.ErrUnknownUser)

		out, err := service.MarkItemPaid(context.Background(), 7, 5)
		require.NoError(t, err)
		assert.True(t, out.Item.Paid)
		assert.Equal(t, domain.ErrUnknownUser.Error(), out.CommissionError)
	})

	t.Run("missing item", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().FindItem(gomock.Any(), 5).Return(nil, nil)

		_, err := service.MarkItemPaid(context.Background(), 7, 5)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("database error", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().FindItem(gomock.Any(), 5).Return(&domain.OrderedItem{ID: 5}, nil)
		m.repo.EXPECT().MarkItemPaid(gomock.Any(), 5, paidAt).Return(false, errors.New("database error"))

		_, err := service.MarkItemPaid(context.Background(), 7, 5)
		assert.EqualError(t, err, "database error")
	})
}
