package withdrawrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/pg"
	"go.uber.org/zap"
)

const selectColumns = `
	id, user_id, amount, status, account_balance_before, account_transaction_id,
	COALESCE(processed_by, 0), processed_at, description, admin_note, created_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanRequest(row pgx.Row) (*domain.WithdrawRequest, error) {
	var wr domain.WithdrawRequest
	err := row.Scan(&wr.ID, &wr.UserID, &wr.Amount, &wr.Status, &wr.BalanceBefore, &wr.AccountTransactionID,
		&wr.ProcessedBy, &wr.ProcessedAt, &wr.Description, &wr.AdminNote, &wr.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &wr, nil
}

func (r *Repository) Create(ctx context.Context, wr *domain.WithdrawRequest) (*domain.WithdrawRequest, error) {
	query := `
		INSERT INTO withdraw_requests (user_id, amount, status, account_balance_before, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, wr.UserID, wr.Amount, wr.Status, wr.BalanceBefore, wr.Description).
		Scan(&wr.ID, &wr.CreatedAt)
	if err != nil {
		zap.L().Error("can't save withdraw request", zap.Error(err))
		return nil, err
	}
	return wr, nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.WithdrawRequest, error) {
	return r.find(ctx, `SELECT `+selectColumns+` FROM withdraw_requests WHERE id = $1`, id)
}

// FindForUpdate loads the request and holds its row lock until the surrounding transaction ends.
func (r *Repository) FindForUpdate(ctx context.Context, id int) (*domain.WithdrawRequest, error) {
	return r.find(ctx, `SELECT `+selectColumns+` FROM withdraw_requests WHERE id = $1 FOR UPDATE`, id)
}

func (r *Repository) find(ctx context.Context, query string, id int) (*domain.WithdrawRequest, error) {
	wr, err := scanRequest(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find withdraw request", zap.Int("id", id), zap.Error(err))
		return nil, err
	}
	return wr, nil
}

// Approve links the debit entry and closes the request. Only a pending request is updated.
func (r *Repository) Approve(ctx context.Context, id, transactionID, actor int, at time.Time) error {
	query := `
		UPDATE withdraw_requests
		SET status = $1, account_transaction_id = $2, processed_by = $3, processed_at = $4
		WHERE id = $5 AND status = 'pending' AND account_transaction_id IS NULL
	`
	return r.resolve(ctx, id, query, domain.WithdrawApproved, transactionID, actor, at, id)
}

// Reject closes a pending request with the admin's reason.
func (r *Repository) Reject(ctx context.Context, id, actor int, reason string, at time.Time) error {
	query := `
		UPDATE withdraw_requests
		SET status = $1, admin_note = $2, processed_by = $3, processed_at = $4
		WHERE id = $5 AND status = 'pending'
	`
	return r.resolve(ctx, id, query, domain.WithdrawRejected, reason, actor, at, id)
}

func (r *Repository) resolve(ctx context.Context, id int, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		zap.L().Error("failed to resolve withdraw request", zap.Int("id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("withdraw request %d: %w", id, domain.ErrAlreadyProcessed)
	}
	return nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int) ([]domain.WithdrawRequest, error) {
	rows, err := r.db.Query(ctx, `SELECT `+selectColumns+` FROM withdraw_requests WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		zap.L().Error("failed to fetch withdraw requests", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var requests []domain.WithdrawRequest
	for rows.Next() {
		wr, err := scanRequest(rows)
		if err != nil {
			zap.L().Error("failed to scan withdraw request row", zap.Error(err))
			return nil, err
		}
		requests = append(requests, *wr)
	}
	return requests, rows.Err()
}
