package ledgerservice

//go:generate mockgen -source=ledgerservice.go -destination=mock_ledgerservice.go -package=ledgerservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/pg"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repo interface {
	Create(ctx context.Context, tx *domain.AccountTransaction) (*domain.AccountTransaction, error)
	Balance(ctx context.Context, userID int) (*domain.Balance, error)
	ListByUser(ctx context.Context, userID int) ([]domain.AccountTransaction, error)
}

type UserRepo interface {
	FindByID(ctx context.Context, id int) (*domain.User, error)
	LockForUpdate(ctx context.Context, id int) error
}

type NewTransaction struct {
	UserID      int
	Amount      decimal.Decimal
	Source      domain.TransactionSource
	Description string
}

type Service struct {
	repo      Repo
	userRepo  UserRepo
	txManager pg.TXManager
	now       func() time.Time
}

func New(repo Repo, userRepo UserRepo, txManager pg.TXManager) *Service {
	return &Service{
		repo:      repo,
		userRepo:  userRepo,
		txManager: txManager,
		now:       time.Now,
	}
}

// Balance is derived from the ledger rows on every call. Debit checks run the same sum in SQL
// under the user's row lock.
func (s *Service) Balance(ctx context.Context, userID int) (*domain.Balance, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	txs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get balance", zap.Error(err))
		return nil, err
	}
	balance := domain.BalanceOf(userID, txs)
	return &balance, nil
}

func (s *Service) History(ctx context.Context, userID int) ([]domain.AccountTransaction, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	txs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		zap.L().Error("failed to fetch account transactions", zap.Error(err))
		return nil, err
	}
	return txs, nil
}

// Record appends a manual adjustment. Debits hold the user's row lock so they are
// checked against the same balance every other debit sees.
func (s *Service) Record(ctx context.Context, actor int, in NewTransaction) (*domain.AccountTransaction, error) {
	if in.Amount.IsZero() {
		return nil, domain.ErrInvalidAmount
	}
	in.Source = domain.TransactionSource(strings.TrimSpace(string(in.Source)))
	if in.Source == "" {
		return nil, domain.ErrSourceRequired
	}

	var saved *domain.AccountTransaction
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		if err := s.userRepo.LockForUpdate(ctx, in.UserID); err != nil {
			return err
		}
		if in.Amount.IsNegative() {
			balance, err := s.repo.Balance(ctx, in.UserID)
			if err != nil {
				return err
			}
			if balance.Current.Add(in.Amount).IsNegative() {
				return domain.ErrInsufficientBalance
			}
		}
		var err error
		saved, err = s.repo.Create(ctx, &domain.AccountTransaction{
			UserID:          in.UserID,
			Amount:          in.Amount,
			Source:          in.Source,
			Description:     in.Description,
			TransactionDate: s.now(),
			CreatedBy:       actor,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("account transaction recorded",
		zap.Int("user_id", in.UserID),
		zap.String("amount", in.Amount.StringFixed(2)),
		zap.String("source", string(in.Source)),
		zap.Int("actor", actor),
	)
	return saved, nil
}

func (s *Service) ensureUser(ctx context.Context, userID int) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	return nil
}
