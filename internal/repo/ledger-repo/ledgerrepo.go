package ledgerrepo

import (
	"context"
	"fmt"

	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/pg"
	"go.uber.org/zap"
)

// Repository is the append-only account transaction ledger. Balances are always derived from it.
type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) Create(ctx context.Context, tx *domain.AccountTransaction) (*domain.AccountTransaction, error) {
	query := `
		INSERT INTO account_transactions (
			user_id, amount, source, description, transaction_date, created_by, ordered_item_id, withdraw_request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		tx.UserID, tx.Amount, tx.Source, tx.Description, tx.TransactionDate, tx.CreatedBy, tx.OrderedItemID, tx.WithdrawRequestID,
	).Scan(&tx.ID)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%s entry for user %d: %w", tx.Source, tx.UserID, domain.ErrDuplicate)
		}
		zap.L().Error("can't save account transaction", zap.Int("user_id", tx.UserID), zap.Error(err))
		return nil, err
	}
	return tx, nil
}

func (r *Repository) Balance(ctx context.Context, userID int) (*domain.Balance, error) {
	query := `
		SELECT
			COALESCE(SUM(amount), 0),
			COALESCE(-SUM(amount) FILTER (WHERE source = 'withdrawal'), 0)
		FROM account_transactions
		WHERE user_id = $1
	`
	balance := domain.Balance{UserID: userID}
	err := r.db.QueryRow(ctx, query, userID).Scan(&balance.Current, &balance.Withdrawn)
	if err != nil {
		zap.L().Error("failed to get user balance", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	return &balance, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int) ([]domain.AccountTransaction, error) {
	query := `
		SELECT id, user_id, amount, source, description, transaction_date, created_by, ordered_item_id, withdraw_request_id
		FROM account_transactions
		WHERE user_id = $1
		ORDER BY transaction_date DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("failed to fetch account transactions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var txs []domain.AccountTransaction
	for rows.Next() {
		var tx domain.AccountTransaction
		err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount, &tx.Source, &tx.Description, &tx.TransactionDate,
			&tx.CreatedBy, &tx.OrderedItemID, &tx.WithdrawRequestID)
		if err != nil {
			zap.L().Error("failed to scan account transaction row", zap.Error(err))
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
