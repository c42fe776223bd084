package checkoutservice

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/pesapal"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/pg"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service/commissionservice"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/lock"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/validate"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

var clock = time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)

type mocks struct {
	repo        *MockRepo
	itemRepo    *MockItemRepo
	productRepo *MockProductRepo
	userRepo    *MockUserRepo
	gateway     *MockGateway
	commission  *MockCommissionService
	txManager   *pg.MockTXManager
}

func NewMock(t *testing.T) (*Service, mocks) {
	ctrl := gomock.NewController(t)
	m := mocks{
		repo:        NewMockRepo(ctrl),
		itemRepo:    NewMockItemRepo(ctrl),
		productRepo: NewMockProductRepo(ctrl),
		userRepo:    NewMockUserRepo(ctrl),
		gateway:     NewMockGateway(ctrl),
		commission:  NewMockCommissionService(ctrl),
		txManager:   pg.NewMockTXManager(ctrl),
	}
	service := New(m.repo, m.itemRepo, m.productRepo, m.userRepo, m.gateway, m.commission,
		m.txManager, lock.NewLocalLocker(), decimal.NewFromInt(5000))
	service.now = func() time.Time { return clock }
	service.reference = func() (string, error) { return "17829849600000007", nil }
	return service, m
}

func (m mocks) passThrough() {
	m.txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error {
		return fn(ctx)
	})
}

func paidCart() *domain.MultipleOrder {
	paidAt := clock.Add(-time.Hour)
	return &domain.MultipleOrder{
		ID:        18,
		UserID:    1,
		SponsorID: "DTEHM001",
		Items: []domain.CartLine{
			{ProductID: 3, Quantity: 2, UnitPrice: decimal.NewFromInt(25000), Subtotal: decimal.NewFromInt(50000), Color: "red"},
			{ProductID: 4, Quantity: 1, UnitPrice: decimal.NewFromInt(50000), Subtotal: decimal.NewFromInt(50000), Size: "XL"},
		},
		Subtotal:         decimal.NewFromInt(100000),
		Total:            decimal.NewFromInt(100000),
		PaymentStatus:    domain.PaymentCompleted,
		ConversionStatus: domain.ConversionPending,
		PaidAt:           &paidAt,
	}
}

func TestCheckout(t *testing.T) {
	service, m := NewMock(t)

	m.userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(&domain.User{ID: 1}, nil)
	m.userRepo.EXPECT().FindByMemberID(gomock.Any(), "DTEHM001").Return(&domain.User{ID: 2, MemberID: "DTEHM001"}, nil)
	m.productRepo.EXPECT().FindByIDs(gomock.Any(), []int{3, 4}).Return(map[int]*domain.Product{
		3: {ID: 3, Price: decimal.NewFromInt(25000)},
		4: {ID: 4, Price: decimal.NewFromInt(60000)},
	}, nil)
	m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, mo *domain.MultipleOrder) (*domain.MultipleOrder, error) {
		mo.ID = 18
		return mo, nil
	})

	mo, err := service.Checkout(context.Background(), NewMultipleOrder{
		UserID:    1,
		SponsorID: "DTEHM001",
		Lines: []domain.CartLine{
			{ProductID: 3, Quantity: 2},
			{ProductID: 4, Quantity: 1, UnitPrice: decimal.NewFromInt(50000)},
		},
	})
	require.NoError(t, err)
	assert.True(t, mo.Items[0].UnitPrice.Equal(decimal.NewFromInt(25000)))
	assert.True(t, mo.Items[0].Subtotal.Equal(decimal.NewFromInt(50000)))
	assert.True(t, mo.Items[1].Subtotal.Equal(decimal.NewFromInt(50000)))
	assert.True(t, mo.Subtotal.Equal(decimal.NewFromInt(100000)))
	assert.True(t, mo.Total.Equal(decimal.NewFromInt(105000)))
	assert.Equal(t, domain.PaymentPending, mo.PaymentStatus)
	assert.Equal(t, domain.ConversionPending, mo.ConversionStatus)
	assert.True(t, validate.IsLuhn(mo.MerchantReference))
}

func TestCheckoutValidation(t *testing.T) {
	tests := []struct {
		name          string
		in            NewMultipleOrder
		prepareMock   func(m mocks)
		expectedError error
	}{
		{
			name:          "Empty cart",
			in:            NewMultipleOrder{UserID: 1},
			prepareMock:   func(m mocks) {},
			expectedError: domain.ErrEmptyCart,
		},
		{
			name: "Unknown user",
			in:   NewMultipleOrder{UserID: 1, Lines: []domain.CartLine{{ProductID: 3, Quantity: 1}}},
			prepareMock: func(m mocks) {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(nil, nil)
			},
			expectedError: domain.ErrNotFound,
		},
		{
			name: "Unknown sponsor",
			in:   NewMultipleOrder{UserID: 1, SponsorID: "NOPE", Lines: []domain.CartLine{{ProductID: 3, Quantity: 1}}},
			prepareMock: func(m mocks) {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(&domain.User{ID: 1}, nil)
				m.userRepo.EXPECT().FindByMemberID(gomock.Any(), "NOPE").Return(nil, nil)
			},
			expectedError: domain.ErrUnknownSponsor,
		},
		{
			name: "Zero quantity",
			in:   NewMultipleOrder{UserID: 1, Lines: []domain.CartLine{{ProductID: 3}}},
			prepareMock: func(m mocks) {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(&domain.User{ID: 1}, nil)
			},
			expectedError: domain.ErrInvalidQuantity,
		},
		{
			name: "Unknown product",
			in:   NewMultipleOrder{UserID: 1, Lines: []domain.CartLine{{ProductID: 9, Quantity: 1}}},
			prepareMock: func(m mocks) {
				m.userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(&domain.User{ID: 1}, nil)
				m.productRepo.EXPECT().FindByIDs(gomock.Any(), []int{9}).Return(map[int]*domain.Product{}, nil)
			},
			expectedError: domain.ErrUnknownProduct,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			_, err := service.Checkout(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.expectedError)
		})
	}
}

func TestInitiatePayment(t *testing.T) {
	pendingCart := func() *domain.MultipleOrder {
		mo := paidCart()
		mo.PaymentStatus, mo.PaidAt, mo.MerchantReference = domain.PaymentPending, nil, "17829849600000007"
		return mo
	}

	t.Run("stores the session", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().FindByID(gomock.Any(), 18).Return(pendingCart(), nil)
		m.userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(&domain.User{ID: 1, Name: "Amina", Phone: "0772000000"}, nil)
		m.gateway.EXPECT().Initialize(gomock.Any(), pesapal.PaymentRequest{
			MerchantReference: "17829849600000007",
			Amount:            decimal.NewFromInt(100000),
			Description:       "DTEHM order #18",
			Phone:             "0772000000",
			FirstName:         "Amina",
		}).Return(&pesapal.PaymentSession{TrackingID: "trk-9", RedirectURL: "https://pay.example/trk-9"}, nil)
		m.repo.EXPECT().SetPaymentSession(gomock.Any(), 18, "trk-9", "https://pay.example/trk-9").Return(nil)

		mo, err := service.InitiatePayment(context.Background(), 18)
		require.NoError(t, err)
		assert.Equal(t, "trk-9", mo.TrackingID)
	})

	t.Run("gateway failure changes nothing", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().FindByID(gomock.Any(), 18).Return(pendingCart(), nil)
		m.userRepo.EXPECT().FindByID(gomock.Any(), 1).Return(nil, nil)
		m.gateway.EXPECT().Initialize(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

		_, err := service.InitiatePayment(context.Background(), 18)
		assert.ErrorIs(t, err, domain.ErrGateway)
		assert.Equal(t, domain.KindDependency, domain.KindOf(err))
	})

	t.Run("already paid", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().FindByID(gomock.Any(), 18).Return(paidCart(), nil)

		_, err := service.InitiatePayment(context.Background(), 18)
		assert.ErrorIs(t, err, domain.ErrAlreadyPaid)
	})
}

func TestConvert(t *testing.T) {
	t.Run("creates one paid item per line and distributes commission", func(t *testing.T) {
		service, m := NewMock(t)
		cart := paidCart()
		m.passThrough()
		m.repo.EXPECT().FindForUpdate(gomock.Any(), 18).Return(cart, nil)
		m.userRepo.EXPECT().FindByMemberID(gomock.Any(), "DTEHM001").Return(&domain.User{ID: 2}, nil)

		nextID := 100
		var created []*domain.OrderedItem
		m.itemRepo.EXPECT().CreateItem(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(func(_ context.Context, item *domain.OrderedItem) (*domain.OrderedItem, error) {
			nextID++
			item.ID = nextID
			created = append(created, item)
			return item, nil
		})
		m.repo.EXPECT().MarkConverted(gomock.Any(), 18, []int{101, 102}, clock).Return(nil)
		m.commission.EXPECT().Process(gomock.Any(), 7, 101).Return(&commissionservice.Outcome{ItemID: 101}, nil)
		m.commission.EXPECT().Process(gomock.Any(), 7, 102).Return(nil, domain.ErrLocked)

		out, err := service.Convert(context.Background(), 7, 18)
		require.NoError(t, err)
		assert.False(t, out.AlreadyConverted)
		assert.Equal(t, []int{101, 102}, out.ItemIDs)
		assert.Len(t, out.Commissions, 1)
		assert.Contains(t, out.CommissionErrors, 102)

		require.Len(t, created, 2)
		for i, item := range created {
			line := cart.Items[i]
			assert.Equal(t, 18, *item.MultipleOrderID)
			assert.Equal(t, line.ProductID, item.ProductID)
			assert.Equal(t, line.Quantity, item.Qty)
			assert.True(t, line.Subtotal.Equal(item.Subtotal))
			assert.Equal(t, line.Color, item.Color)
			assert.Equal(t, line.Size, item.Size)
			assert.True(t, item.Paid)
			assert.True(t, item.HasDtehmSeller)
			assert.Equal(t, 2, item.SellerID)
			assert.True(t, item.CommissionEligible())
		}
	})

	t.Run("pending payment is rejected and status unchanged", func(t *testing.T) {
		service, m := NewMock(t)
		cart := paidCart()
		cart.PaymentStatus, cart.PaidAt = domain.PaymentPending, nil
		m.passThrough()
		m.repo.EXPECT().FindForUpdate(gomock.Any(), 18).Return(cart, nil)

		_, err := service.Convert(context.Background(), 7, 18)
		assert.ErrorIs(t, err, domain.ErrPaymentNotCompleted)
		assert.Equal(t, domain.ConversionPending, cart.ConversionStatus)
	})

	t.Run("already converted writes nothing", func(t *testing.T) {
		service, m := NewMock(t)
		cart := paidCart()
		cart.ConversionStatus, cart.ConversionResult = domain.ConversionCompleted, []int{101, 102}
		m.passThrough()
		m.repo.EXPECT().FindForUpdate(gomock.Any(), 18).Return(cart, nil)

		out, err := service.Convert(context.Background(), 7, 18)
		require.NoError(t, err)
		assert.True(t, out.AlreadyConverted)
		assert.Equal(t, []int{101, 102}, out.ItemIDs)
	})

	t.Run("item failure rolls back and records the error", func(t *testing.T) {
		service, m := NewMock(t)
		m.txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error {
			return fn(ctx)
		})
		m.repo.EXPECT().FindForUpdate(gomock.Any(), 18).Return(paidCart(), nil)
		m.userRepo.EXPECT().FindByMemberID(gomock.Any(), "DTEHM001").Return(&domain.User{ID: 2}, nil)
		m.itemRepo.EXPECT().CreateItem(gomock.Any(), gomock.Any()).Return(&domain.OrderedItem{ID: 101}, nil)
		m.itemRepo.EXPECT().CreateItem(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))
		m.repo.EXPECT().MarkConversionFailed(gomock.Any(), 18, "create item for product 4: db error").Return(nil)

		_, err := service.Convert(context.Background(), 7, 18)
		assert.EqualError(t, err, "create item for product 4: db error")
	})

	t.Run("automatic trigger does not retry a failed conversion", func(t *testing.T) {
		service, m := NewMock(t)
		cart := paidCart()
		cart.ConversionStatus = domain.ConversionFailed
		m.passThrough()
		m.repo.EXPECT().FindForUpdate(gomock.Any(), 18).Return(cart, nil)

		_, err := service.convert(context.Background(), SystemActor, 18, false)
		assert.ErrorIs(t, err, domain.ErrNotConvertible)
	})

	t.Run("admin retries a failed conversion", func(t *testing.T) {
		service, m := NewMock(t)
		cart := paidCart()
		cart.SponsorID = ""
		cart.Items = cart.Items[:1]
		cart.ConversionStatus = domain.ConversionFailed
		m.passThrough()
		m.repo.EXPECT().FindForUpdate(gomock.Any(), 18).Return(cart, nil)
		m.itemRepo.EXPECT().CreateItem(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, item *domain.OrderedItem) (*domain.OrderedItem, error) {
			assert.False(t, item.HasDtehmSeller)
			item.ID = 101
			return item, nil
		})
		m.repo.EXPECT().MarkConverted(gomock.Any(), 18, []int{101}, clock).Return(nil)
		m.commission.EXPECT().Process(gomock.Any(), 7, 101).Return(nil, domain.ErrNotEligible)

		out, err := service.Convert(context.Background(), 7, 18)
		require.NoError(t, err)
		assert.Equal(t, []int{101}, out.ItemIDs)
	})

	t.Run("lock held elsewhere", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		locker := lock.NewMockLocker(ctrl)
		service := New(NewMockRepo(ctrl), NewMockItemRepo(ctrl), NewMockProductRepo(ctrl), NewMockUserRepo(ctrl),
			NewMockGateway(ctrl), NewMockCommissionService(ctrl), pg.NewMockTXManager(ctrl), locker, decimal.Zero)
		locker.EXPECT().Obtain(gomock.Any(), "conversion:multiple-order:18", lock.DefaultTTL).Return(nil, lock.ErrNotObtained)

		_, err := service.Convert(context.Background(), 7, 18)
		assert.ErrorIs(t, err, domain.ErrLocked)
	})
}

func TestHandleNotification(t *testing.T) {
	t.Run("completed payment converts the cart", func(t *testing.T) {
		service, m := NewMock(t)
		cart := paidCart()
		cart.PaymentStatus, cart.PaidAt, cart.TrackingID = domain.PaymentPending, nil, "trk-9"
		cart.Items = cart.Items[:1]

		m.repo.EXPECT().FindByTrackingID(gomock.Any(), "trk-9").Return(cart, nil)
		m.gateway.EXPECT().Status(gomock.Any(), "trk-9").Return(domain.PaymentCompleted, nil)
		m.passThrough()
		m.passThrough()
		m.repo.EXPECT().FindForUpdate(gomock.Any(), 18).Times(2).Return(cart, nil)
		m.repo.EXPECT().UpdatePayment(gomock.Any(), cart).Return(nil)
		m.userRepo.EXPECT().FindByMemberID(gomock.Any(), "DTEHM001").Return(&domain.User{ID: 2}, nil)
		m.itemRepo.EXPECT().CreateItem(gomock.Any(), gomock.Any()).Return(&domain.OrderedItem{ID: 101}, nil)
		m.repo.EXPECT().MarkConverted(gomock.Any(), 18, []int{101}, clock).Return(nil)
		m.commission.EXPECT().Process(gomock.Any(), SystemActor, 101).Return(&commissionservice.Outcome{ItemID: 101}, nil)

		out, err := service.HandleNotification(context.Background(), "trk-9", "")
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentCompleted, out.Order.PaymentStatus)
		assert.Equal(t, clock, *out.Order.PaidAt)
		assert.Equal(t, domain.ConversionCompleted, out.Order.ConversionStatus)
		require.NotNil(t, out.Conversion)
		assert.Equal(t, []int{101}, out.Conversion.ItemIDs)
	})

	t.Run("still pending stores nothing", func(t *testing.T) {
		service, m := NewMock(t)
		cart := paidCart()
		cart.PaymentStatus, cart.PaidAt, cart.TrackingID = domain.PaymentPending, nil, "trk-9"

		m.repo.EXPECT().FindByTrackingID(gomock.Any(), "trk-9").Return(cart, nil)
		m.gateway.EXPECT().Status(gomock.Any(), "trk-9").Return(domain.PaymentPending, nil)
		m.passThrough()
		m.repo.EXPECT().FindForUpdate(gomock.Any(), 18).Return(cart, nil)

		out, err := service.HandleNotification(context.Background(), "trk-9", "")
		require.NoError(t, err)
		assert.Nil(t, out.Conversion)
	})

	t.Run("falls back to the merchant reference and keeps the tracking id", func(t *testing.T) {
		service, m := NewMock(t)
		cart := paidCart()
		cart.PaymentStatus, cart.PaidAt = domain.PaymentPending, nil
		cart.RedirectURL = "https://pay.example/redirect"
		locked := *cart
		locked.TrackingID = "trk-9"

		m.repo.EXPECT().FindByTrackingID(gomock.Any(), "trk-9").Return(nil, nil)
		m.repo.EXPECT().FindByMerchantReference(gomock.Any(), "17829849600000007").Return(cart, nil)
		m.repo.EXPECT().SetPaymentSession(gomock.Any(), 18, "trk-9", "https://pay.example/redirect").Return(nil)
		m.gateway.EXPECT().Status(gomock.Any(), "trk-9").Return(domain.PaymentFailed, nil)
		m.passThrough()
		m.repo.EXPECT().FindForUpdate(gomock.Any(), 18).Return(&locked, nil)
		m.repo.EXPECT().UpdatePayment(gomock.Any(), &locked).Return(nil)

		out, err := service.HandleNotification(context.Background(), "trk-9", "17829849600000007")
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentFailed, out.Order.PaymentStatus)
		assert.Equal(t, "trk-9", out.Order.TrackingID)
	})

	t.Run("tracking id that cannot be stored stops the sync", func(t *testing.T) {
		service, m := NewMock(t)
		cart := paidCart()
		cart.PaymentStatus, cart.PaidAt = domain.PaymentPending, nil

		m.repo.EXPECT().FindByTrackingID(gomock.Any(), "trk-9").Return(nil, nil)
		m.repo.EXPECT().FindByMerchantReference(gomock.Any(), "17829849600000007").Return(cart, nil)
		m.repo.EXPECT().SetPaymentSession(gomock.Any(), 18, "trk-9", "").Return(errors.New("db error"))

		_, err := service.HandleNotification(context.Background(), "trk-9", "17829849600000007")
		assert.EqualError(t, err, "db error")
	})

	t.Run("tampered merchant reference is not looked up", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().FindByTrackingID(gomock.Any(), "trk-0").Return(nil, nil)

		_, err := service.HandleNotification(context.Background(), "trk-0", "17829849600000008")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unknown order", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().FindByTrackingID(gomock.Any(), "trk-0").Return(nil, nil)

		_, err := service.HandleNotification(context.Background(), "trk-0", "")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestSyncPayment(t *testing.T) {
	t.Run("stale snapshot does not undo an admin payment", func(t *testing.T) {
		service, m := NewMock(t)
		stale := paidCart()
		stale.PaymentStatus, stale.PaidAt, stale.TrackingID = domain.PaymentPending, nil, "trk-9"

		locked := paidCart()
		locked.TrackingID, locked.PaidByAdmin, locked.AdminNote = "trk-9", true, "cash at stockist"
		locked.ConversionStatus, locked.ConversionResult = domain.ConversionCompleted, []int{101, 102}

		m.gateway.EXPECT().Status(gomock.Any(), "trk-9").Return(domain.PaymentFailed, nil)
		m.passThrough()
		m.repo.EXPECT().FindForUpdate(gomock.Any(), 18).Return(locked, nil)
		m.repo.EXPECT().UpdatePayment(gomock.Any(), gomock.Any()).Times(0)

		out, err := service.SyncPayment(context.Background(), stale)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentCompleted, out.Order.PaymentStatus)
		assert.True(t, out.Order.PaidByAdmin)
		assert.Equal(t, "cash at stockist", out.Order.AdminNote)
		assert.NotNil(t, out.Order.PaidAt)
		assert.Nil(t, out.Conversion)
	})

	t.Run("order deleted under the lock", func(t *testing.T) {
		service, m := NewMock(t)
		stale := paidCart()
		stale.PaymentStatus, stale.PaidAt, stale.TrackingID = domain.PaymentPending, nil, "trk-9"

		m.gateway.EXPECT().Status(gomock.Any(), "trk-9").Return(domain.PaymentCompleted, nil)
		m.passThrough()
		m.repo.EXPECT().FindForUpdate(gomock.Any(), 18).Return(nil, nil)

		_, err := service.SyncPayment(context.Background(), stale)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("no tracking id asks nothing", func(t *testing.T) {
		service, _ := NewMock(t)
		cart := paidCart()
		cart.PaymentStatus = domain.PaymentPending

		out, err := service.SyncPayment(context.Background(), cart)
		require.NoError(t, err)
		assert.Same(t, cart, out.Order)
	})
}

func TestMarkPaidByAdmin(t *testing.T) {
	for _, note := range []string{"", "   \t"} {
		t.Run("note required "+strconv.Quote(note), func(t *testing.T) {
			service, _ := NewMock(t)
			_, err := service.MarkPaidByAdmin(context.Background(), 7, 18, note)
			assert.ErrorIs(t, err, domain.ErrNoteRequired)
		})
	}

	t.Run("marks paid and reports conversion failure", func(t *testing.T) {
		service, m := NewMock(t)
		cart := paidCart()
		cart.PaymentStatus, cart.PaidAt = domain.PaymentPending, nil

		m.passThrough()
		m.passThrough()
		m.repo.EXPECT().FindForUpdate(gomock.Any(), 18).Times(2).Return(cart, nil)
		m.repo.EXPECT().UpdatePayment(gomock.Any(), cart).Return(nil)
		m.userRepo.EXPECT().FindByMemberID(gomock.Any(), "DTEHM001").Return(nil, nil)
		m.repo.EXPECT().MarkConversionFailed(gomock.Any(), 18, gomock.Any()).Return(nil)

		out, err := service.MarkPaidByAdmin(context.Background(), 7, 18, "  cash at stockist ")
		require.NoError(t, err)
		assert.True(t, out.Order.PaidByAdmin)
		assert.Equal(t, "cash at stockist", out.Order.AdminNote)
		assert.Equal(t, domain.PaymentCompleted, out.Order.PaymentStatus)
		assert.Contains(t, out.ConversionError, "sponsor does not exist")
	})

	t.Run("already paid under the lock", func(t *testing.T) {
		service, m := NewMock(t)
		m.passThrough()
		m.repo.EXPECT().FindForUpdate(gomock.Any(), 18).Return(paidCart(), nil)
		m.repo.EXPECT().UpdatePayment(gomock.Any(), gomock.Any()).Times(0)

		_, err := service.MarkPaidByAdmin(context.Background(), 7, 18, "cash")
		assert.ErrorIs(t, err, domain.ErrAlreadyPaid)
	})

	t.Run("unknown order", func(t *testing.T) {
		service, m := NewMock(t)
		m.passThrough()
		m.repo.EXPECT().FindForUpdate(gomock.Any(), 18).Return(nil, nil)

		_, err := service.MarkPaidByAdmin(context.Background(), 7, 18, "cash")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
