package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/config"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/handlers"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/pesapal"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/pg"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/productbatch"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/reconcile"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/repo"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/clients"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/lock"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/logger"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/workerpool"
)

const workerPoolSize = 10

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg       *config.Config
	api       *handlers.Handlers
	srv       *service.Services
	repo      *repo.Repositories
	reconcile *reconcile.Service

	errCh chan error
	wg    sync.WaitGroup
	ready bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	cfg := config.New()

	err := logger.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}

	pool, err := getPgxpool(ctx, cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	if err := pg.RunMigrations(pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		return fmt.Errorf("can't run migrations: %w", err)
	}
	txManager := pg.NewTXManager(pool)

	locker, err := getLocker(ctx, cfg)
	if err != nil {
		zap.L().Error("redis unavailable: ", zap.Error(err))
		return fmt.Errorf("can't connect to redis: %w", err)
	}

	conn := pg.New(pool)
	gateway := pesapal.New(cfg, clients.NewHTTPClient())
	workers := workerpool.New(workerPoolSize)

	a.cfg = cfg
	a.repo = repo.New(conn)
	a.srv, err = service.New(cfg, a.repo, txManager, locker, gateway)
	if err != nil {
		return fmt.Errorf("can't build services: %w", err)
	}
	a.api = handlers.New(a.srv, productbatch.New(a.srv.ProductService, workers))
	a.reconcile = reconcile.New(cfg, a.repo.MultiOrderRepo, a.repo.OrderRepo, a.srv.CheckoutService, a.srv.CommissionService, workers)

	if err := a.srv.AuthService.EnsureAdmin(ctx, cfg.AdminLogin, cfg.AdminPassword); err != nil {
		return fmt.Errorf("can't bootstrap admin: %w", err)
	}

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}

	a.reconcile.Start(ctx)

	a.ready = true
	zap.L().Info("all systems started successfully")
	return nil
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		return nil, err
	}
	return dbpool, nil
}

// getLocker returns a redis backed locker shared by every instance, or an
// in-process one when no redis address is configured.
func getLocker(ctx context.Context, cfg *config.Config) (lock.Locker, error) {
	if cfg.RedisAddress == "" {
		zap.L().Warn("REDIS_ADDRESS not set, locks are local to this process")
		return lock.NewLocalLocker(), nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return lock.NewRedisLocker(rdb), nil
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)
	server := http.Server{
		Addr:              a.cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(sCtx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server on port", zap.String("port", a.cfg.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	close(a.errCh)
	wg.Wait()

	return appErr
}
