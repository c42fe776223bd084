package checkoutservice

//go:generate mockgen -source=checkoutservice.go -destination=mock_checkoutservice.go -package=checkoutservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/pesapal"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/pg"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/service/commissionservice"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/lock"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/validate"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SystemActor is recorded when the gateway or the reconciliation loop drives a change.
const SystemActor = 0

type Repo interface {
	Create(ctx context.Context, m *domain.MultipleOrder) (*domain.MultipleOrder, error)
	FindByID(ctx context.Context, id int) (*domain.MultipleOrder, error)
	FindForUpdate(ctx context.Context, id int) (*domain.MultipleOrder, error)
	FindByTrackingID(ctx context.Context, trackingID string) (*domain.MultipleOrder, error)
	FindByMerchantReference(ctx context.Context, reference string) (*domain.MultipleOrder, error)
	SetPaymentSession(ctx context.Context, id int, trackingID, redirectURL string) error
	UpdatePayment(ctx context.Context, m *domain.MultipleOrder) error
	MarkConverted(ctx context.Context, id int, itemIDs []int, at time.Time) error
	MarkConversionFailed(ctx context.Context, id int, reason string) error
}

type ItemRepo interface {
	CreateItem(ctx context.Context, item *domain.OrderedItem) (*domain.OrderedItem, error)
}

type ProductRepo interface {
	FindByIDs(ctx context.Context, ids []int) (map[int]*domain.Product, error)
}

type UserRepo interface {
	FindByID(ctx context.Context, id int) (*domain.User, error)
	FindByMemberID(ctx context.Context, memberID string) (*domain.User, error)
}

type Gateway interface {
	Initialize(ctx context.Context, req pesapal.PaymentRequest) (*pesapal.PaymentSession, error)
	Status(ctx context.Context, trackingID string) (domain.PaymentStatus, error)
}

type CommissionService interface {
	Process(ctx context.Context, actor, itemID int) (*commissionservice.Outcome, error)
}

type NewMultipleOrder struct {
	UserID     int
	SponsorID  string
	StockistID string
	Lines      []domain.CartLine
}

// ConversionOutcome lists the ordered items a cart became. CommissionErrors is keyed by item id
// and only holds items the reconciliation loop still has to pay out.
type ConversionOutcome struct {
	MultipleOrderID  int                          `json:"multiple_order_id"`
	AlreadyConverted bool                         `json:"already_converted"`
	ItemIDs          []int                        `json:"item_ids"`
	Commissions      []*commissionservice.Outcome `json:"commissions,omitempty"`
	CommissionErrors map[int]string               `json:"commission_errors,omitempty"`
}

// PaymentOutcome is the order after a payment change plus what conversion did with it.
type PaymentOutcome struct {
	Order           *domain.MultipleOrder `json:"order"`
	Conversion      *ConversionOutcome    `json:"conversion,omitempty"`
	ConversionError string                `json:"conversion_error,omitempty"`
}

type Service struct {
	repo        Repo
	itemRepo    ItemRepo
	productRepo ProductRepo
	userRepo    UserRepo
	gateway     Gateway
	commission  CommissionService
	txManager   pg.TXManager
	locker      lock.Locker
	deliveryFee decimal.Decimal
	now         func() time.Time
	reference   func() (string, error)
}

func New(
	repo Repo,
	itemRepo ItemRepo,
	productRepo ProductRepo,
	userRepo UserRepo,
	gateway Gateway,
	commission CommissionService,
	txManager pg.TXManager,
	locker lock.Locker,
	deliveryFee decimal.Decimal,
) *Service {
	s := &Service{
		repo:        repo,
		itemRepo:    itemRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		gateway:     gateway,
		commission:  commission,
		txManager:   txManager,
		locker:      locker,
		deliveryFee: deliveryFee,
		now:         time.Now,
	}
	s.reference = s.merchantReference
	return s
}

// merchantReference is the creation time in microseconds with a Luhn check digit.
func (s *Service) merchantReference() (string, error) {
	return validate.WithCheckDigit(strconv.FormatInt(s.now().UnixMicro(), 10))
}

func (s *Service) Checkout(ctx context.Context, in NewMultipleOrder) (*domain.MultipleOrder, error) {
	if len(in.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}
	user, err := s.userRepo.FindByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", in.UserID, domain.ErrNotFound)
	}
	if in.SponsorID != "" {
		if _, err := s.sponsor(ctx, in.SponsorID); err != nil {
			return nil, err
		}
	}

	ids := make([]int, 0, len(in.Lines))
	for _, line := range in.Lines {
		if line.Quantity < 1 {
			return nil, domain.ErrInvalidQuantity
		}
		if line.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidAmount
		}
		ids = append(ids, line.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	m := &domain.MultipleOrder{
		UserID:           in.UserID,
		SponsorID:        in.SponsorID,
		StockistID:       in.StockistID,
		Items:            make([]domain.CartLine, 0, len(in.Lines)),
		Subtotal:         decimal.Zero,
		DeliveryFee:      s.deliveryFee,
		PaymentStatus:    domain.PaymentPending,
		ConversionStatus: domain.ConversionPending,
	}
	for _, line := range in.Lines {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %d: %w", line.ProductID, domain.ErrUnknownProduct)
		}
		if line.UnitPrice.IsZero() {
			line.UnitPrice = product.Price
		}
		line.Subtotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		m.Subtotal = m.Subtotal.Add(line.Subtotal)
		m.Items = append(m.Items, line)
	}
	m.Total = m.Subtotal.Add(m.DeliveryFee)

	if m.MerchantReference, err = s.reference(); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, m)
	if err != nil {
		return nil, err
	}
	zap.L().Info("multiple order created",
		zap.Int("id", created.ID),
		zap.String("merchant_reference", created.MerchantReference),
		zap.String("total", created.Total.StringFixed(2)),
	)
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int) (*domain.MultipleOrder, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("multiple order %d: %w", id, domain.ErrNotFound)
	}
	return m, nil
}

// InitiatePayment opens a PesaPal session. Nothing is stored when the gateway fails.
func (s *Service) InitiatePayment(ctx context.Context, id int) (*domain.MultipleOrder, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := payable(m); err != nil {
		return nil, err
	}

	req := pesapal.PaymentRequest{
		MerchantReference: m.MerchantReference,
		Amount:            m.Total,
		Description:       fmt.Sprintf("DTEHM order #%d", m.ID),
	}
	if user, err := s.userRepo.FindByID(ctx, m.UserID); err == nil && user != nil {
		req.Email, req.Phone, req.FirstName = user.Email, user.Phone, user.Name
	}

	session, err := s.gateway.Initialize(ctx, req)
	if err != nil {
		zap.L().Error("failed to initialize payment", zap.Int("id", id), zap.Error(err))
		if domain.KindOf(err) != domain.KindDependency {
			err = fmt.Errorf("%w: %v", domain.ErrGateway, err)
		}
		return nil, err
	}
	if err := s.repo.SetPaymentSession(ctx, id, session.TrackingID, session.RedirectURL); err != nil {
		return nil, err
	}
	m.TrackingID, m.RedirectURL = session.TrackingID, session.RedirectURL
	return m, nil
}

func payable(m *domain.MultipleOrder) error {
	switch m.PaymentStatus {
	case domain.PaymentCompleted:
		return fmt.Errorf("multiple order %d: %w", m.ID, domain.ErrAlreadyPaid)
	case domain.PaymentCancelled:
		return fmt.Errorf("multiple order %d: %w", m.ID, domain.ErrPaymentClosed)
	}
	return nil
}

// HandleNotification resolves the order named by a PesaPal IPN and syncs its payment status.
func (s *Service) HandleNotification(ctx context.Context, trackingID, merchantReference string) (*PaymentOutcome, error) {
	var (
		m   *domain.MultipleOrder
		err error
	)
	if trackingID != "" {
		if m, err = s.repo.FindByTrackingID(ctx, trackingID); err != nil {
			return nil, err
		}
	}
	if m == nil && merchantReference != "" && validate.IsLuhn(merchantReference) {
		if m, err = s.repo.FindByMerchantReference(ctx, merchantReference); err != nil {
			return nil, err
		}
	}
	if m == nil {
		return nil, fmt.Errorf("tracking id %q: %w", trackingID, domain.ErrNotFound)
	}
	if m.TrackingID == "" && trackingID != "" {
		if err := s.repo.SetPaymentSession(ctx, m.ID, trackingID, m.RedirectURL); err != nil {
			return nil, err
		}
		m.TrackingID = trackingID
	}
	return s.SyncPayment(ctx, m)
}

// SyncPayment asks the gateway for the order's status and applies it.
func (s *Service) SyncPayment(ctx context.Context, m *domain.MultipleOrder) (*PaymentOutcome, error) {
	if m.TrackingID == "" {
		return &PaymentOutcome{Order: m}, nil
	}
	status, err := s.gateway.Status(ctx, m.TrackingID)
	if err != nil {
		return nil, err
	}
	return s.applyStatus(ctx, m, status)
}

// applyStatus decides the transition against the locked row, not the caller's copy.
func (s *Service) applyStatus(ctx context.Context, m *domain.MultipleOrder, status domain.PaymentStatus) (*PaymentOutcome, error) {
	var (
		current *domain.MultipleOrder
		changed bool
	)
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		var err error
		if current, err = s.lockOrder(ctx, m.ID); err != nil {
			return err
		}
		if !current.PaymentStatus.CanBecome(status) {
			return nil
		}
		current.PaymentStatus = status
		if status == domain.PaymentCompleted {
			now := s.now()
			current.PaidAt = &now
		}
		changed = true
		return s.repo.UpdatePayment(ctx, current)
	})
	if err != nil {
		return nil, err
	}
	if changed {
		zap.L().Info("payment status changed", zap.Int("id", current.ID), zap.String("status", string(status)))
	}

	out := &PaymentOutcome{Order: current}
	if current.PaymentConfirmed() && current.ConversionStatus == domain.ConversionPending {
		s.convertAfterPayment(ctx, SystemActor, out, false)
	}
	return out, nil
}

// MarkPaidByAdmin records an offline payment and converts the cart.
func (s *Service) MarkPaidByAdmin(ctx context.Context, actor, id int, note string) (*PaymentOutcome, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, domain.ErrNoteRequired
	}

	var m *domain.MultipleOrder
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		var err error
		if m, err = s.lockOrder(ctx, id); err != nil {
			return err
		}
		if err := payable(m); err != nil {
			return err
		}
		now := s.now()
		m.PaymentStatus, m.PaidByAdmin, m.AdminNote, m.PaidAt = domain.PaymentCompleted, true, note, &now
		return s.repo.UpdatePayment(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("multiple order marked paid by admin", zap.Int("id", id), zap.Int("actor", actor))

	out := &PaymentOutcome{Order: m}
	s.convertAfterPayment(ctx, actor, out, true)
	return out, nil
}

func (s *Service) lockOrder(ctx context.Context, id int) (*domain.MultipleOrder, error) {
	m, err := s.repo.FindForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("multiple order %d: %w", id, domain.ErrNotFound)
	}
	return m, nil
}

func (s *Service) convertAfterPayment(ctx context.Context, actor int, out *PaymentOutcome, manual bool) {
	conv, err := s.convert(ctx, actor, out.Order.ID, manual)
	if err != nil {
		zap.L().Warn("conversion after payment failed", zap.Int("id", out.Order.ID), zap.Error(err))
		out.ConversionError = err.Error()
		return
	}
	out.Conversion = conv
	out.Order.ConversionStatus = domain.ConversionCompleted
	out.Order.ConversionResult = conv.ItemIDs
}

// Convert turns a paid cart into ordered items. An admin may retry a failed conversion.
func (s *Service) Convert(ctx context.Context, actor, id int) (*ConversionOutcome, error) {
	return s.convert(ctx, actor, id, true)
}

func (s *Service) convert(ctx context.Context, actor, id int, manual bool) (*ConversionOutcome, error) {
	var out *ConversionOutcome
	err := lock.With(ctx, s.locker, fmt.Sprintf("conversion:multiple-order:%d", id), func(ctx context.Context) error {
		attempted := false
		err := s.txManager.Begin(ctx, func(ctx context.Context) error {
			var err error
			out, attempted, err = s.convertLocked(ctx, id, manual)
			return err
		})
		if err != nil && attempted {
			if ferr := s.repo.MarkConversionFailed(context.WithoutCancel(ctx), id, err.Error()); ferr != nil {
				zap.L().Error("failed to record conversion failure", zap.Int("id", id), zap.Error(ferr))
			}
		}
		return err
	})
	if errors.Is(err, lock.ErrNotObtained) {
		return nil, fmt.Errorf("multiple order %d: %w", id, domain.ErrLocked)
	}
	if err != nil {
		return nil, err
	}
	if out.AlreadyConverted {
		return out, nil
	}

	zap.L().Info("multiple order converted", zap.Int("id", id), zap.Ints("item_ids", out.ItemIDs), zap.Int("actor", actor))
	for _, itemID := range out.ItemIDs {
		res, err := s.commission.Process(ctx, actor, itemID)
		if err != nil {
			if out.CommissionErrors == nil {
				out.CommissionErrors = make(map[int]string)
			}
			out.CommissionErrors[itemID] = err.Error()
			continue
		}
		out.Commissions = append(out.Commissions, res)
	}
	return out, nil
}

// convertLocked runs inside the conversion transaction. attempted is true once the
// preconditions held, which is when a failure has to be recorded on the order.
func (s *Service) convertLocked(ctx context.Context, id int, manual bool) (*ConversionOutcome, bool, error) {
	m, err := s.lockOrder(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if !m.PaymentConfirmed() {
		return nil, false, fmt.Errorf("multiple order %d: %w", id, domain.ErrPaymentNotCompleted)
	}
	if m.ConversionStatus == domain.ConversionCompleted {
		return &ConversionOutcome{MultipleOrderID: id, AlreadyConverted: true, ItemIDs: m.ConversionResult}, false, nil
	}
	if !m.ConversionStatus.Convertible(manual) {
		return nil, false, fmt.Errorf("multiple order %d is %s: %w", id, m.ConversionStatus, domain.ErrNotConvertible)
	}

	var seller *domain.User
	if m.SponsorID != "" {
		if seller, err = s.sponsor(ctx, m.SponsorID); err != nil {
			return nil, true, err
		}
	}

	now := s.now()
	paidAt := now
	if m.PaidAt != nil {
		paidAt = *m.PaidAt
	}
	ids := make([]int, 0, len(m.Items))
	for _, line := range m.Items {
		item := &domain.OrderedItem{
			MultipleOrderID: &m.ID,
			ProductID:       line.ProductID,
			Qty:             line.Quantity,
			UnitPrice:       line.UnitPrice,
			Subtotal:        line.Subtotal,
			Color:           line.Color,
			Size:            line.Size,
			Paid:            true,
			PaidAt:          &paidAt,
			CommissionState: domain.CommissionPending,
		}
		if seller != nil {
			item.HasDtehmSeller, item.SellerID = true, seller.ID
		}
		created, err := s.itemRepo.CreateItem(ctx, item)
		if err != nil {
			return nil, true, fmt.Errorf("create item for product %d: %w", line.ProductID, err)
		}
		ids = append(ids, created.ID)
	}
	if err := s.repo.MarkConverted(ctx, m.ID, ids, now); err != nil {
		return nil, true, err
	}
	return &ConversionOutcome{MultipleOrderID: id, ItemIDs: ids}, true, nil
}

func (s *Service) sponsor(ctx context.Context, memberID string) (*domain.User, error) {
	sponsor, err := s.userRepo.FindByMemberID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if sponsor == nil {
		return nil, fmt.Errorf("sponsor %s: %w", memberID, domain.ErrUnknownSponsor)
	}
	return sponsor, nil
}
