package reconcile

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/config"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service/checkoutservice"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service/commissionservice"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/workerpool"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type mocks struct {
	paymentRepo *MockPaymentRepo
	itemRepo    *MockItemRepo
	syncer      *MockPaymentSyncer
	commission  *MockCommissionProcessor
}

func NewMock(t *testing.T, pool workerpool.WorkerPoolI) (*Service, mocks) {
	ctrl := gomock.NewController(t)
	m := mocks{
		paymentRepo: NewMockPaymentRepo(ctrl),
		itemRepo:    NewMockItemRepo(ctrl),
		syncer:      NewMockPaymentSyncer(ctrl),
		commission:  NewMockCommissionProcessor(ctrl),
	}
	service := New(&config.Config{SyncInterval: 10 * time.Millisecond}, m.paymentRepo, m.itemRepo, m.syncer, m.commission, pool)
	service.retryInterval = time.Millisecond
	return service, m
}

func TestService_Start(t *testing.T) {
	pool := workerpool.New(2)
	service, m := NewMock(t, pool)
	m.paymentRepo.EXPECT().FindPendingPayments(gomock.Any(), uint32(500)).Return(nil, nil).AnyTimes()
	m.itemRepo.EXPECT().FindPendingCommission(gomock.Any(), uint32(500)).Return(nil, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	service.Start(ctx)
	time.Sleep(35 * time.Millisecond)
	cancel()
	pool.Close()
}

func TestService_syncPayments(t *testing.T) {
	pool := workerpool.New(2)
	service, m := NewMock(t, pool)

	m.paymentRepo.EXPECT().FindPendingPayments(gomock.Any(), uint32(500)).Return([]domain.MultipleOrder{
		{ID: 1, TrackingID: "trk-1"},
		{ID: 2, TrackingID: "trk-2"},
	}, nil)
	m.syncer.EXPECT().SyncPayment(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, mo *domain.MultipleOrder) (*checkoutservice.PaymentOutcome, error) {
			return &checkoutservice.PaymentOutcome{Order: mo}, nil
		}).Times(2)

	service.syncPayments(context.Background())
	pool.Close()
}

func TestService_syncPaymentsRetriesGatewayErrors(t *testing.T) {
	pool := workerpool.New(1)
	service, m := NewMock(t, pool)

	m.paymentRepo.EXPECT().FindPendingPayments(gomock.Any(), gomock.Any()).Return([]domain.MultipleOrder{{ID: 1, TrackingID: "trk-1"}}, nil)
	gomock.InOrder(
		m.syncer.EXPECT().SyncPayment(gomock.Any(), gomock.Any()).Return(nil, domain.ErrGateway),
		m.syncer.EXPECT().SyncPayment(gomock.Any(), gomock.Any()).Return(&checkoutservice.PaymentOutcome{}, nil),
	)

	service.syncPayments(context.Background())
	pool.Close()
}

func TestService_processCommissions(t *testing.T) {
	pool := workerpool.New(2)
	service, m := NewMock(t, pool)

	m.itemRepo.EXPECT().FindPendingCommission(gomock.Any(), uint32(500)).Return([]int{101, 102}, nil)
	m.commission.EXPECT().Process(gomock.Any(), checkoutservice.SystemActor, 101).Return(&commissionservice.Outcome{ItemID: 101}, nil)
	// business failures are not retried within a tick
	m.commission.EXPECT().Process(gomock.Any(), checkoutservice.SystemActor, 102).Return(nil, domain.ErrUnknownUser).Times(1)

	service.processCommissions(context.Background())
	pool.Close()
}

func TestService_fetchErrors(t *testing.T) {
	service, m := NewMock(t, workerpool.NewMockWorkerPoolI(gomock.NewController(t)))

	m.paymentRepo.EXPECT().FindPendingPayments(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))
	m.itemRepo.EXPECT().FindPendingCommission(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))

	service.syncPayments(context.Background())
	service.processCommissions(context.Background())
}

func TestService_dispatchSkipsInFlight(t *testing.T) {
	ctrl := gomock.NewController(t)
	pool := workerpool.NewMockWorkerPoolI(ctrl)
	service, m := NewMock(t, pool)

	service.items.Store(101, struct{}{})
	m.itemRepo.EXPECT().FindPendingCommission(gomock.Any(), gomock.Any()).Return([]int{101, 102}, nil)

	var queued int32
	pool.EXPECT().AddTask(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, workerpool.Task) error {
		atomic.AddInt32(&queued, 1)
		return nil
	}).Times(1)

	service.processCommissions(context.Background())
	assert.Equal(t, int32(1), atomic.LoadInt32(&queued))
	_, stillHeld := service.items.Load(102)
	assert.True(t, stillHeld)
}

func TestService_dispatchReleasesKeyWhenQueueFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	pool := workerpool.NewMockWorkerPoolI(ctrl)
	service, m := NewMock(t, pool)

	m.itemRepo.EXPECT().FindPendingCommission(gomock.Any(), gomock.Any()).Return([]int{101}, nil)
	pool.EXPECT().AddTask(gomock.Any(), gomock.Any()).Return(context.Canceled)

	service.processCommissions(context.Background())
	_, held := service.items.Load(101)
	assert.False(t, held)
}
