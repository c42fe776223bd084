package commissionservice

//go:generate mockgen -source=commissionservice.go -destination=mock_commissionservice.go -package=commissionservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/pg"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/lock"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ItemRepo interface {
	FindItemForUpdate(ctx context.Context, id int) (*domain.OrderedItem, error)
	SaveCommission(ctx context.Context, id int, c domain.Commission) error
}

type UserRepo interface {
	FindByID(ctx context.Context, id int) (*domain.User, error)
	ExistingIDs(ctx context.Context, ids []int) (map[int]bool, error)
}

type LedgerRepo interface {
	Create(ctx context.Context, tx *domain.AccountTransaction) (*domain.AccountTransaction, error)
}

// Outcome reports what Process did with one ordered item.
type Outcome struct {
	ItemID           int                         `json:"item_id"`
	AlreadyProcessed bool                        `json:"already_processed"`
	Commission       domain.Commission           `json:"commission"`
	Transactions     []domain.AccountTransaction `json:"transactions,omitempty"`
}

type Service struct {
	itemRepo   ItemRepo
	userRepo   UserRepo
	ledgerRepo LedgerRepo
	txManager  pg.TXManager
	locker     lock.Locker
	schedule   Schedule
	now        func() time.Time
}

func New(itemRepo ItemRepo, userRepo UserRepo, ledgerRepo LedgerRepo, txManager pg.TXManager, locker lock.Locker) *Service {
	return &Service{
		itemRepo:   itemRepo,
		userRepo:   userRepo,
		ledgerRepo: ledgerRepo,
		txManager:  txManager,
		locker:     locker,
		schedule:   DefaultSchedule,
		now:        time.Now,
	}
}

// Process distributes the commission of a paid item exactly once. The item row stays locked
// until the ledger entries and the commission snapshot are committed together.
func (s *Service) Process(ctx context.Context, actor, itemID int) (*Outcome, error) {
	var out *Outcome
	err := lock.With(ctx, s.locker, fmt.Sprintf("commission:item:%d", itemID), func(ctx context.Context) error {
		return s.txManager.Begin(ctx, func(ctx context.Context) error {
			var err error
			out, err = s.process(ctx, actor, itemID)
			return err
		})
	})
	if errors.Is(err, lock.ErrNotObtained) {
		return nil, fmt.Errorf("ordered item %d: %w", itemID, domain.ErrLocked)
	}
	if err != nil {
		zap.L().Warn("commission not distributed", zap.Int("item_id", itemID), zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (s *Service) process(ctx context.Context, actor, itemID int) (*Outcome, error) {
	item, err := s.itemRepo.FindItemForUpdate(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("ordered item %d: %w", itemID, domain.ErrNotFound)
	}
	if item.CommissionState == domain.CommissionProcessed {
		return &Outcome{ItemID: itemID, AlreadyProcessed: true, Commission: item.Commission}, nil
	}
	if !item.CommissionEligible() {
		return nil, fmt.Errorf("ordered item %d: %w", itemID, domain.ErrNotEligible)
	}

	seller, err := s.userRepo.FindByID(ctx, item.SellerID)
	if err != nil {
		return nil, err
	}
	if seller == nil {
		return nil, fmt.Errorf("seller %d: %w", item.SellerID, domain.ErrUnknownUser)
	}
	if err := s.verifyUpline(ctx, seller.Upline); err != nil {
		return nil, err
	}

	c := Split(item.Subtotal, seller.Upline, s.schedule)
	now := s.now()
	c.ProcessedAt = &now

	out := &Outcome{ItemID: itemID, Commission: c}
	entries := make([]domain.AccountTransaction, 0, domain.UplineDepth+1)
	if c.Seller.IsPositive() {
		entries = append(entries, s.entry(item.ID, seller.ID, actor, now, c.Seller,
			fmt.Sprintf("Seller commission for ordered item #%d", item.ID)))
	}
	for k, lvl := range c.Levels {
		if lvl.UserID == 0 || !lvl.Amount.IsPositive() {
			continue
		}
		entries = append(entries, s.entry(item.ID, lvl.UserID, actor, now, lvl.Amount,
			fmt.Sprintf("Level %d commission for ordered item #%d", k+1, item.ID)))
	}
	for i := range entries {
		saved, err := s.ledgerRepo.Create(ctx, &entries[i])
		if err != nil {
			return nil, err
		}
		out.Transactions = append(out.Transactions, *saved)
	}

	if err := s.itemRepo.SaveCommission(ctx, item.ID, c); err != nil {
		return nil, err
	}

	zap.L().Info("commission distributed",
		zap.Int("item_id", item.ID),
		zap.String("total", c.Total.StringFixed(2)),
		zap.Int("entries", len(out.Transactions)),
	)
	return out, nil
}

// verifyUpline fails when any generation of the snapshot no longer resolves to a user.
func (s *Service) verifyUpline(ctx context.Context, upline domain.Upline) error {
	ids := upline.Populated()
	if len(ids) == 0 {
		return nil
	}
	found, err := s.userRepo.ExistingIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if !found[id] {
			return fmt.Errorf("upline user %d: %w", id, domain.ErrUnknownUser)
		}
	}
	return nil
}

func (s *Service) entry(itemID, userID, actor int, at time.Time, amount decimal.Decimal, description string) domain.AccountTransaction {
	return domain.AccountTransaction{
		UserID:          userID,
		Amount:          amount,
		Source:          domain.SourceCommission,
		Description:     description,
		TransactionDate: at,
		CreatedBy:       actor,
		OrderedItemID:   &itemID,
	}
}
