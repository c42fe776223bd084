package withdrawservice

//go:generate mockgen -source=withdrawservice.go -destination=mock_withdrawservice.go -package=withdrawservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/pg"
	"github.com/mubahood/dtehm-insurance-api-sub001/pkg/lock"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repo interface {
	Create(ctx context.Context, wr *domain.WithdrawRequest) (*domain.WithdrawRequest, error)
	FindByID(ctx context.Context, id int) (*domain.WithdrawRequest, error)
	FindForUpdate(ctx context.Context, id int) (*domain.WithdrawRequest, error)
	Approve(ctx context.Context, id, transactionID, actor int, at time.Time) error
	Reject(ctx context.Context, id, actor int, reason string, at time.Time) error
	ListByUser(ctx context.Context, userID int) ([]domain.WithdrawRequest, error)
}

type UserRepo interface {
	FindByID(ctx context.Context, id int) (*domain.User, error)
	LockForUpdate(ctx context.Context, id int) error
}

type LedgerRepo interface {
	Create(ctx context.Context, tx *domain.AccountTransaction) (*domain.AccountTransaction, error)
	Balance(ctx context.Context, userID int) (*domain.Balance, error)
}

type Service struct {
	repo       Repo
	userRepo   UserRepo
	ledgerRepo LedgerRepo
	txManager  pg.TXManager
	locker     lock.Locker
	now        func() time.Time
}

func New(repo Repo, userRepo UserRepo, ledgerRepo LedgerRepo, txManager pg.TXManager, locker lock.Locker) *Service {
	return &Service{
		repo:       repo,
		userRepo:   userRepo,
		ledgerRepo: ledgerRepo,
		txManager:  txManager,
		locker:     locker,
		now:        time.Now,
	}
}

// Create files a pending request. The balance seen now is stored as balance_before;
// approval checks the balance again.
func (s *Service) Create(ctx context.Context, userID int, amount decimal.Decimal, note string) (*domain.WithdrawRequest, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	balance, err := s.ledgerRepo.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if balance.Current.LessThan(amount) {
		return nil, domain.ErrInsufficientBalance
	}

	wr, err := s.repo.Create(ctx, &domain.WithdrawRequest{
		UserID:        userID,
		Amount:        amount,
		Status:        domain.WithdrawPending,
		BalanceBefore: balance.Current,
		Description:   note,
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("withdraw request created", zap.Int("id", wr.ID), zap.Int("user_id", userID), zap.String("amount", amount.StringFixed(2)))
	return wr, nil
}

func (s *Service) Get(ctx context.Context, id int) (*domain.WithdrawRequest, error) {
	wr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wr == nil {
		return nil, fmt.Errorf("withdraw request %d: %w", id, domain.ErrNotFound)
	}
	return wr, nil
}

func (s *Service) ListByUser(ctx context.Context, userID int) ([]domain.WithdrawRequest, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Approve debits the ledger and closes the request. The request row and the user row stay
// locked until the debit is committed, so two approvals for one user never see the same balance.
func (s *Service) Approve(ctx context.Context, actor, id int) (*domain.WithdrawRequest, error) {
	wr, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if wr.Status.Resolved() {
		return nil, fmt.Errorf("withdraw request %d: %w", id, domain.ErrAlreadyProcessed)
	}

	var approved *domain.WithdrawRequest
	err = lock.With(ctx, s.locker, fmt.Sprintf("withdraw:user:%d", wr.UserID), func(ctx context.Context) error {
		return s.txManager.Begin(ctx, func(ctx context.Context) error {
			var err error
			approved, err = s.approve(ctx, actor, id)
			return err
		})
	})
	if errors.Is(err, lock.ErrNotObtained) {
		return nil, fmt.Errorf("withdraw request %d: %w", id, domain.ErrLocked)
	}
	if err != nil {
		zap.L().Warn("withdraw request not approved", zap.Int("id", id), zap.Error(err))
		return nil, err
	}
	zap.L().Info("withdraw request approved", zap.Int("id", id), zap.Int("actor", actor))
	return approved, nil
}

func (s *Service) approve(ctx context.Context, actor, id int) (*domain.WithdrawRequest, error) {
	wr, err := s.repo.FindForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if wr == nil {
		return nil, fmt.Errorf("withdraw request %d: %w", id, domain.ErrNotFound)
	}
	if wr.Status != domain.WithdrawPending || wr.AccountTransactionID != nil {
		return nil, fmt.Errorf("withdraw request %d: %w", id, domain.ErrAlreadyProcessed)
	}
	if err := s.userRepo.LockForUpdate(ctx, wr.UserID); err != nil {
		return nil, err
	}

	balance, err := s.ledgerRepo.Balance(ctx, wr.UserID)
	if err != nil {
		return nil, err
	}
	if balance.Current.LessThan(wr.Amount) {
		return nil, domain.ErrInsufficientBalance
	}

	now := s.now()
	requestID := wr.ID
	debit, err := s.ledgerRepo.Create(ctx, &domain.AccountTransaction{
		UserID:            wr.UserID,
		Amount:            wr.Amount.Neg(),
		Source:            domain.SourceWithdrawal,
		Description:       fmt.Sprintf("Withdrawal request #%d", wr.ID),
		TransactionDate:   now,
		CreatedBy:         actor,
		WithdrawRequestID: &requestID,
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.Approve(ctx, wr.ID, debit.ID, actor, now); err != nil {
		return nil, err
	}

	wr.Status = domain.WithdrawApproved
	wr.AccountTransactionID = &debit.ID
	wr.ProcessedBy = actor
	wr.ProcessedAt = &now
	return wr, nil
}

// Reject closes a pending request. The ledger is never touched.
func (s *Service) Reject(ctx context.Context, actor, id int, reason string) (*domain.WithdrawRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.ErrReasonRequired
	}
	wr, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if wr.Status.Resolved() {
		return nil, fmt.Errorf("withdraw request %d: %w", id, domain.ErrAlreadyProcessed)
	}

	now := s.now()
	if err := s.repo.Reject(ctx, id, actor, reason, now); err != nil {
		return nil, err
	}
	wr.Status = domain.WithdrawRejected
	wr.AdminNote = reason
	wr.ProcessedBy = actor
	wr.ProcessedAt = &now
	zap.L().Info("withdraw request rejected", zap.Int("id", id), zap.Int("actor", actor))
	return wr, nil
}
