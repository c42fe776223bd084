package productbatch

//go:generate mockgen -source=productbatch.go -destination=mock_productbatch.go -package=productbatch

import (
	"context"
	"sync"
	"time"

	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/workerpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	maxAttempts    = 3
	attemptTimeout = 300 * time.Second
	retryInterval  = time.Second
)

type Processor interface {
	ProcessProduct(ctx context.Context, id int) error
}

// Batch runs product extraction jobs in the background, one job per product.
type Batch struct {
	processor  Processor
	workerPool workerpool.WorkerPoolI
	inFlight   sync.Map
	interval   time.Duration
}

func New(processor Processor, pool workerpool.WorkerPoolI) *Batch {
	return &Batch{
		processor:  processor,
		workerPool: pool,
		interval:   retryInterval,
	}
}

// Enqueue schedules the given products and returns how many jobs were queued.
// Products that already have a job in flight are skipped.
func (b *Batch) Enqueue(ctx context.Context, ids []int) (int, error) {
	jobCtx := context.WithoutCancel(ctx)

	var (
		g      errgroup.Group
		mu     sync.Mutex
		queued int
	)
	for _, id := range ids {
		id := id
		if _, loaded := b.inFlight.LoadOrStore(id, struct{}{}); loaded {
			continue
		}

		g.Go(func() error {
			err := b.workerPool.AddTask(ctx, func() error {
				defer b.inFlight.Delete(id)
				return b.run(jobCtx, id)
			})
			if err != nil {
				b.inFlight.Delete(id)
				return err
			}
			mu.Lock()
			queued++
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		zap.L().Error("Failed to queue product jobs", zap.Error(err))
	}
	return queued, err
}

func (b *Batch) run(ctx context.Context, id int) error {
	err := workerpool.Retry(ctx, maxAttempts, b.interval, attemptTimeout, func(ctx context.Context) error {
		return b.processor.ProcessProduct(ctx, id)
	})
	if err != nil {
		zap.L().Error("Product job failed", zap.Int("product_id", id), zap.Error(err))
	}
	return err
}
