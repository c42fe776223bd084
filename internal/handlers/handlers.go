package handlers

//go:generate mockgen -source=handlers.go -destination=mock_handlers.go -package=handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/mubahood/dtehm-insurance-api-sub001/docs"
	authhandlers "github.com/mubahood/dtehm-insurance-api-sub001/internal/handlers/auth"
	balancehandlers "github.com/mubahood/dtehm-insurance-api-sub001/internal/handlers/balance"
	checkouthandlers "github.com/mubahood/dtehm-insurance-api-sub001/internal/handlers/checkout"
	ordershandlers "github.com/mubahood/dtehm-insurance-api-sub001/internal/handlers/orders"
	productshandlers "github.com/mubahood/dtehm-insurance-api-sub001/internal/handlers/products"
	usershandlers "github.com/mubahood/dtehm-insurance-api-sub001/internal/handlers/users"
	withdrawhandlers "github.com/mubahood/dtehm-insurance-api-sub001/internal/handlers/withdrawals"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/auth"
)

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
}

type UserHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
}

type ProductHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	BatchProcess(w http.ResponseWriter, r *http.Request)
}

type OrderHandler interface {
	AddOrder(w http.ResponseWriter, r *http.Request)
	GetOrder(w http.ResponseWriter, r *http.Request)
	CreateItem(w http.ResponseWriter, r *http.Request)
	GetItem(w http.ResponseWriter, r *http.Request)
	PayItem(w http.ResponseWriter, r *http.Request)
	ProcessCommission(w http.ResponseWriter, r *http.Request)
}

type BalanceHandler interface {
	GetBalance(w http.ResponseWriter, r *http.Request)
	GetTransactions(w http.ResponseWriter, r *http.Request)
	Record(w http.ResponseWriter, r *http.Request)
}

type CheckoutHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	InitiatePayment(w http.ResponseWriter, r *http.Request)
	MarkPaid(w http.ResponseWriter, r *http.Request)
	Convert(w http.ResponseWriter, r *http.Request)
	Notify(w http.ResponseWriter, r *http.Request)
}

type WithdrawHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	ListByUser(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler     AuthHandler
	UserHandler     UserHandler
	ProductHandler  ProductHandler
	OrderHandler    OrderHandler
	BalanceHandler  BalanceHandler
	CheckoutHandler CheckoutHandler
	WithdrawHandler WithdrawHandler

	jwtService auth.JWTServiceInterface
}

func New(s *service.Services, batch productshandlers.Batcher) *Handlers {
	return &Handlers{
		AuthHandler:     authhandlers.New(s.AuthService),
		UserHandler:     usershandlers.New(s.UserService),
		ProductHandler:  productshandlers.New(s.ProductService, batch),
		OrderHandler:    ordershandlers.New(s.OrderService),
		BalanceHandler:  balancehandlers.New(s.LedgerService),
		CheckoutHandler: checkouthandlers.New(s.CheckoutService),
		WithdrawHandler: withdrawhandlers.New(s.WithdrawService),
		jwtService:      s.JWTService,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Route("/api", func(r chi.Router) {
		r.Post("/admin/login", h.AuthHandler.Login)
		r.Get("/pesapal/ipn", h.CheckoutHandler.Notify)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(h.jwtService))
			r.Post("/admin/admins", h.AuthHandler.Register)

			r.Post("/users", h.UserHandler.Create)
			r.Route("/users/{id}", func(r chi.Router) {
				r.Get("/", h.UserHandler.Get)
				r.Get("/balance", h.BalanceHandler.GetBalance)
				r.Get("/transactions", h.BalanceHandler.GetTransactions)
				r.Get("/withdraw-requests", h.WithdrawHandler.ListByUser)
			})
			r.Post("/account-transactions", h.BalanceHandler.Record)

			r.Route("/products", func(r chi.Router) {
				r.Post("/", h.ProductHandler.Create)
				r.Post("/batch-process", h.ProductHandler.BatchProcess)
				r.Get("/{id}", h.ProductHandler.Get)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", h.OrderHandler.AddOrder)
				r.Get("/{number}", h.OrderHandler.GetOrder)
			})
			r.Route("/ordered-items", func(r chi.Router) {
				r.Post("/", h.OrderHandler.CreateItem)
				r.Get("/{id}", h.OrderHandler.GetItem)
				r.Post("/{id}/pay", h.OrderHandler.PayItem)
				r.Post("/{id}/process-commission", h.OrderHandler.ProcessCommission)
			})

			r.Route("/multiple-orders", func(r chi.Router) {
				r.Post("/", h.CheckoutHandler.Create)
				r.Get("/{id}", h.CheckoutHandler.Get)
				r.Post("/{id}/payment", h.CheckoutHandler.InitiatePayment)
				r.Post("/{id}/mark-paid", h.CheckoutHandler.MarkPaid)
				r.Get("/{id}/convert", h.CheckoutHandler.Convert)
			})

			r.Route("/withdraw-requests", func(r chi.Router) {
				r.Post("/", h.WithdrawHandler.Create)
				r.Get("/{id}", h.WithdrawHandler.Get)
				r.Post("/{id}/approve", h.WithdrawHandler.Approve)
				r.Get("/{id}/reject", h.WithdrawHandler.Reject)
			})
		})
	})

	return r
}
