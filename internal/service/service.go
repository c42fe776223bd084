package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/config"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/pg"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/repo"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service/authservice"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service/checkoutservice"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service/commissionservice"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service/ledgerservice"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service/orderservice"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service/productservice"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service/userservice"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service/withdrawservice"
	pkgauth "github.com/mubahood/dtehm-insurance-api-sub001/pkg/auth"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/lock"
)

type Services struct {
	AuthService       *authservice.Service
	UserService       *userservice.Service
	ProductService    *productservice.Service
	OrderService      *orderservice.Service
	CommissionService *commissionservice.Service
	LedgerService     *ledgerservice.Service
	CheckoutService   *checkoutservice.Service
	WithdrawService   *withdrawservice.Service

	JWTService pkgauth.JWTServiceInterface
}

func New(
	cfg *config.Config,
	repo *repo.Repositories,
	txManager pg.TXManager,
	locker lock.Locker,
	gateway checkoutservice.Gateway,
) (*Services, error) {
	deliveryFee, err := decimal.NewFromString(cfg.DeliveryFee)
	if err != nil || deliveryFee.IsNegative() {
		return nil, fmt.Errorf("invalid delivery fee %q", cfg.DeliveryFee)
	}

	jwtService := pkgauth.NewJWTService(cfg.JWTSecret)
	commissionService := commissionservice.New(repo.OrderRepo, repo.UserRepo, repo.LedgerRepo, txManager, locker)

	return &Services{
		AuthService:       authservice.New(repo.AdminRepo, pkgauth.NewHashService(0), jwtService),
		UserService:       userservice.New(repo.UserRepo),
		ProductService:    productservice.New(repo.ProductRepo),
		OrderService:      orderservice.New(repo.OrderRepo, repo.ProductRepo, repo.UserRepo, commissionService),
		CommissionService: commissionService,
		LedgerService:     ledgerservice.New(repo.LedgerRepo, repo.UserRepo, txManager),
		CheckoutService: checkoutservice.New(
			repo.MultiOrderRepo,
			repo.OrderRepo,
			repo.ProductRepo,
			repo.UserRepo,
			gateway,
			commissionService,
			txManager,
			locker,
			deliveryFee,
		),
		WithdrawService: withdrawservice.New(repo.WithdrawRepo, repo.UserRepo, repo.LedgerRepo, txManager, locker),
		JWTService:      jwtService,
	}, nil
}
