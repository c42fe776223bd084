package reconcile

//go:generate mockgen -source=reconcile.go -destination=mock_reconcile.go -package=reconcile

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/config"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service/checkoutservice"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service/commissionservice"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/workerpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	maxAttempts   = 3
	retryInterval = time.Second
	taskTimeout   = time.Minute
)

type PaymentRepo interface {
	FindPendingPayments(ctx context.Context, limit uint32) ([]domain.MultipleOrder, error)
}

type ItemRepo interface {
	FindPendingCommission(ctx context.Context, limit uint32) ([]int, error)
}

type PaymentSyncer interface {
	SyncPayment(ctx context.Context, m *domain.MultipleOrder) (*checkoutservice.PaymentOutcome, error)
}

type CommissionProcessor interface {
	Process(ctx context.Context, actor, itemID int) (*commissionservice.Outcome, error)
}

// Service periodically finishes work the request path could not: payments the gateway has not
// confirmed yet and commissions that failed after their item was paid.
type Service struct {
	paymentRepo    PaymentRepo
	itemRepo       ItemRepo
	syncer         PaymentSyncer
	commission     CommissionProcessor
	workerPool     workerpool.WorkerPoolI
	limit          uint32
	updateInterval time.Duration
	retryInterval  time.Duration

	payments sync.Map
	items    sync.Map
}

func New(
	cfg *config.Config,
	paymentRepo PaymentRepo,
	itemRepo ItemRepo,
	syncer PaymentSyncer,
	commission CommissionProcessor,
	pool workerpool.WorkerPoolI,
) *Service {
	return &Service{
		paymentRepo:    paymentRepo,
		itemRepo:       itemRepo,
		syncer:         syncer,
		commission:     commission,
		workerPool:     pool,
		limit:          500,
		updateInterval: cfg.SyncInterval,
		retryInterval:  retryInterval,
	}
}

func (s *Service) Start(ctx context.Context) {
	zap.L().Info("Reconciliation started", zap.Duration("interval", s.updateInterval))
	go s.run(ctx)
}

func (s *Service) run(ctx context.Context) {
	ticker := time.NewTicker(s.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Context canceled, stopping reconciliation")
			return
		case <-ticker.C:
			s.syncPayments(ctx)
			s.processCommissions(ctx)
		}
	}
}

func (s *Service) syncPayments(ctx context.Context) {
	orders, err := s.paymentRepo.FindPendingPayments(ctx, atomic.LoadUint32(&s.limit))
	if err != nil {
		zap.L().Error("Failed to fetch pending payments", zap.Error(err))
		return
	}

	var g errgroup.Group
	for i := range orders {
		order := orders[i]
		s.dispatch(ctx, &g, &s.payments, order.ID, func(ctx context.Context) error {
			_, err := s.syncer.SyncPayment(ctx, &order)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		zap.L().Error("Error queueing payment sync", zap.Error(err))
	}
}

func (s *Service) processCommissions(ctx context.Context) {
	ids, err := s.itemRepo.FindPendingCommission(ctx, atomic.LoadUint32(&s.limit))
	if err != nil {
		zap.L().Error("Failed to fetch items awaiting commission", zap.Error(err))
		return
	}

	var g errgroup.Group
	for _, id := range ids {
		id := id
		s.dispatch(ctx, &g, &s.items, id, func(ctx context.Context) error {
			_, err := s.commission.Process(ctx, checkoutservice.SystemActor, id)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		zap.L().Error("Error queueing commission retries", zap.Error(err))
	}
}

// dispatch queues task unless one for key is still in flight. Business errors end the task
// without a retry; it is picked up again on the next tick if still pending.
func (s *Service) dispatch(ctx context.Context, g *errgroup.Group, inFlight *sync.Map, key int, task func(ctx context.Context) error) {
	if _, loaded := inFlight.LoadOrStore(key, struct{}{}); loaded {
		return
	}
	g.Go(func() error {
		err := s.workerPool.AddTask(ctx, func() error {
			defer inFlight.Delete(key)
			return workerpool.Retry(ctx, maxAttempts, s.retryInterval, taskTimeout, func(ctx context.Context) error {
				err := task(ctx)
				if err != nil && domain.KindOf(err) != "" && domain.KindOf(err) != domain.KindDependency {
					zap.L().Warn("Reconciliation task skipped", zap.Int("key", key), zap.Error(err))
					return nil
				}
				return err
			})
		})
		if err != nil {
			inFlight.Delete(key)
			return err
		}
		return nil
	})
}
