package repo

import (
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/pg"
	adminrepo "github.com/mubahood/dtehm-insurance-api-sub001/internal/repo/admin-repo"
	ledgerrepo "github.com/mubahood/dtehm-insurance-api-sub001/internal/repo/ledger-repo"
	multiorderrepo "github.com/mubahood/dtehm-insurance-api-sub001/internal/repo/multiorder-repo"
	orderrepo "github.com/mubahood/dtehm-insurance-api-sub001/internal/repo/order-repo"
	productrepo "github.com/mubahood/dtehm-insurance-api-sub001/internal/repo/product-repo"
	userrepo "github.com/mubahood/dtehm-insurance-api-sub001/internal/repo/user-repo"
	withdrawrepo "github.com/mubahood/dtehm-insurance-api-sub001/internal/repo/withdraw-repo"
)

// Repositories share one connection. Each repository satisfies the narrower
// interfaces the services declare for it.
type Repositories struct {
	AdminRepo      *adminrepo.Repository
	UserRepo       *userrepo.Repository
	ProductRepo    *productrepo.Repository
	OrderRepo      *orderrepo.Repository
	MultiOrderRepo *multiorderrepo.Repository
	LedgerRepo     *ledgerrepo.Repository
	WithdrawRepo   *withdrawrepo.Repository
}

func New(conn pg.Database) *Repositories {
	return &Repositories{
		AdminRepo:      adminrepo.New(conn),
		UserRepo:       userrepo.New(conn),
		ProductRepo:    productrepo.New(conn),
		OrderRepo:      orderrepo.New(conn),
		MultiOrderRepo: multiorderrepo.New(conn),
		LedgerRepo:     ledgerrepo.New(conn),
		WithdrawRepo:   withdrawrepo.New(conn),
	}
}
