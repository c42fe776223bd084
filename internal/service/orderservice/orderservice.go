package orderservice

//go:generate mockgen -source=orderservice.go -destination=mock_orderservice.go -package=orderservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service/commissionservice"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/validate"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repo interface {
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	CreateItem(ctx context.Context, item *domain.OrderedItem) (*domain.OrderedItem, error)
	FindItem(ctx context.Context, id int) (*domain.OrderedItem, error)
	MarkItemPaid(ctx context.Context, id int, paidAt time.Time) (bool, error)
}

type ProductRepo interface {
	FindByID(ctx context.Context, id int) (*domain.Product, error)
}

type UserRepo interface {
	FindByID(ctx context.Context, id int) (*domain.User, error)
	FindByMemberID(ctx context.Context, memberID string) (*domain.User, error)
}

type CommissionService interface {
	Process(ctx context.Context, actor, itemID int) (*commissionservice.Outcome, error)
}

var ErrOrderAlreadyExistsByUser = errors.New("order already exists by user")

type NewItem struct {
	OrderID        *int
	ProductID      int
	Qty            int
	UnitPrice      decimal.Decimal
	Color          string
	Size           string
	SellerMemberID string
}

// PaymentOutcome is the result of marking an item paid. CommissionError is set when the
// distributor failed; the item then stays eligible for the reconciliation loop.
type PaymentOutcome struct {
	Item            *domain.OrderedItem        `json:"item"`
	Commission      *commissionservice.Outcome `json:"commission,omitempty"`
	CommissionError string                     `json:"commission_error,omitempty"`
}

type Service struct {
	repo        Repo
	productRepo ProductRepo
	userRepo    UserRepo
	commission  CommissionService
	now         func() time.Time
}

func New(repo Repo, productRepo ProductRepo, userRepo UserRepo, commission CommissionService) *Service {
	return &Service{
		repo:        repo,
		productRepo: productRepo,
		userRepo:    userRepo,
		commission:  commission,
		now:         time.Now,
	}
}

func (s *Service) CreateOrder(ctx context.Context, actor, userID int, orderNumber string) (*domain.Order, error) {
	if !validate.IsLuhn(orderNumber) {
		return nil, domain.ErrInvalidOrderNumber
	}
	existing, err := s.repo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.UserID == userID {
			zap.L().Info("order already exists by user", zap.String("order_number", orderNumber))
			return existing, ErrOrderAlreadyExistsByUser
		}
		zap.L().Info("order already exists", zap.String("order_number", orderNumber))
		return nil, fmt.Errorf("order %s: %w", orderNumber, domain.ErrDuplicate)
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}

	order, err := s.repo.CreateOrder(ctx, &domain.Order{UserID: userID, OrderNumber: orderNumber})
	if err != nil {
		zap.L().Error("can't save order", zap.Error(err))
		return nil, err
	}
	zap.L().Info("order created", zap.String("order_number", orderNumber), zap.Int("actor", actor))
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, orderNumber string) (*domain.Order, error) {
	order, err := s.repo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order %s: %w", orderNumber, domain.ErrNotFound)
	}
	return order, nil
}

// CreateItem records a sale line. The unit price defaults to the product price and the
// commission columns start empty.
func (s *Service) CreateItem(ctx context.Context, actor int, in NewItem) (*domain.OrderedItem, error) {
	if in.Qty < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	if in.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	product, err := s.productRepo.FindByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("product %d: %w", in.ProductID, domain.ErrUnknownProduct)
	}

	item := &domain.OrderedItem{
		OrderID:         in.OrderID,
		ProductID:       product.ID,
		Qty:             in.Qty,
		UnitPrice:       in.UnitPrice,
		Color:           in.Color,
		Size:            in.Size,
		CommissionState: domain.CommissionPending,
	}
	if item.UnitPrice.IsZero() {
		item.UnitPrice = product.Price
	}
	item.Subtotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(in.Qty)))

	if in.SellerMemberID != "" {
		seller, err := s.userRepo.FindByMemberID(ctx, in.SellerMemberID)
		if err != nil {
			return nil, err
		}
		if seller == nil {
			return nil, fmt.Errorf("seller %s: %w", in.SellerMemberID, domain.ErrUnknownSeller)
		}
		item.HasDtehmSeller, item.SellerID = true, seller.ID
	}

	created, err := s.repo.CreateItem(ctx, item)
	if err != nil {
		return nil, err
	}
	zap.L().Info("ordered item created", zap.Int("id", created.ID), zap.Int("actor", actor))
	return created, nil
}

func (s *Service) GetItem(ctx context.Context, id int) (*domain.OrderedItem, error) {
	item, err := s.repo.FindItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("ordered item %d: %w", id, domain.ErrNotFound)
	}
	return item, nil
}

// MarkItemPaid sets the paid flag once and hands eligible items to the commission distributor.
// Repeating the call is harmless.
func (s *Service) MarkItemPaid(ctx context.Context, actor, id int) (*PaymentOutcome, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.Paid {
		now := s.now()
		changed, err := s.repo.MarkItemPaid(ctx, id, now)
		if err != nil {
			return nil, err
		}
		if changed {
			zap.L().Info("ordered item paid", zap.Int("id", id), zap.Int("actor", actor))
		}
		item.Paid, item.PaidAt = true, &now
	}

	out := &PaymentOutcome{Item: item}
	if !item.CommissionEligible() {
		return out, nil
	}
	commission, err := s.commission.Process(ctx, actor, id)
	if err != nil {
		zap.L().Warn("commission left for retry", zap.Int("item_id", id), zap.Error(err))
		out.CommissionError = err.Error()
		return out, nil
	}
	out.Commission = commission
	item.CommissionState, item.Commission = domain.CommissionProcessed, commission.Commission
	return out, nil
}

// ProcessCommission runs the distributor for one item on demand.
func (s *Service) ProcessCommission(ctx context.Context, actor, id int) (*commissionservice.Outcome, error) {
	return s.commission.Process(ctx, actor, id)
}
