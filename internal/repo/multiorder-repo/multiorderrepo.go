package multiorderrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/pg"
	"go.uber.org/zap"
)

const selectColumns = `
	id, user_id, sponsor_id, stockist_id, items_json, subtotal, delivery_fee, total_amount,
	payment_status, conversion_status, merchant_reference, pesapal_tracking_id, pesapal_redirect_url,
	is_paid_by_admin, admin_payment_note, paid_at, converted_at, conversion_result, conversion_error, created_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanMultipleOrder(row pgx.Row) (*domain.MultipleOrder, error) {
	var (
		m             domain.MultipleOrder
		items, result []byte
	)
	err := row.Scan(
		&m.ID, &m.UserID, &m.SponsorID, &m.StockistID, &items, &m.Subtotal, &m.DeliveryFee, &m.Total,
		&m.PaymentStatus, &m.ConversionStatus, &m.MerchantReference, &m.TrackingID, &m.RedirectURL,
		&m.PaidByAdmin, &m.AdminNote, &m.PaidAt, &m.ConvertedAt, &result, &m.ConversionError, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &m.Items); err != nil {
		return nil, fmt.Errorf("decode items of multiple order %d: %w", m.ID, err)
	}
	if len(result) > 0 {
		if err := json.Unmarshal(result, &m.ConversionResult); err != nil {
			return nil, fmt.Errorf("decode conversion result of multiple order %d: %w", m.ID, err)
		}
	}
	return &m, nil
}

func (r *Repository) find(ctx context.Context, query string, arg any) (*domain.MultipleOrder, error) {
	m, err := scanMultipleOrder(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find multiple order", zap.Any("key", arg), zap.Error(err))
		return nil, err
	}
	return m, nil
}

func (r *Repository) Create(ctx context.Context, m *domain.MultipleOrder) (*domain.MultipleOrder, error) {
	items, err := json.Marshal(m.Items)
	if err != nil {
		return nil, err
	}
	query := `
		INSERT INTO multiple_orders (
			user_id, sponsor_id, stockist_id, items_json, subtotal, delivery_fee, total_amount,
			payment_status, conversion_status, merchant_reference
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`
	err = r.db.QueryRow(ctx, query,
		m.UserID, m.SponsorID, m.StockistID, items, m.Subtotal, m.DeliveryFee, m.Total,
		m.PaymentStatus, m.ConversionStatus, m.MerchantReference,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return nil, fmt.Errorf("merchant reference %s: %w", m.MerchantReference, domain.ErrDuplicate)
		}
		zap.L().Error("can't save multiple order", zap.Error(err))
		return nil, err
	}
	return m, nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.MultipleOrder, error) {
	return r.find(ctx, `SELECT `+selectColumns+` FROM multiple_orders WHERE id = $1`, id)
}

// FindForUpdate loads the order and holds its row lock until the surrounding transaction ends.
func (r *Repository) FindForUpdate(ctx context.Context, id int) (*domain.MultipleOrder, error) {
	return r.find(ctx, `SELECT `+selectColumns+` FROM multiple_orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *Repository) FindByTrackingID(ctx context.Context, trackingID string) (*domain.MultipleOrder, error) {
	return r.find(ctx, `SELECT `+selectColumns+` FROM multiple_orders WHERE pesapal_tracking_id = $1`, trackingID)
}

func (r *Repository) FindByMerchantReference(ctx context.Context, reference string) (*domain.MultipleOrder, error) {
	return r.find(ctx, `SELECT `+selectColumns+` FROM multiple_orders WHERE merchant_reference = $1`, reference)
}

func (r *Repository) SetPaymentSession(ctx context.Context, id int, trackingID, redirectURL string) error {
	query := `
		UPDATE multiple_orders
		SET pesapal_tracking_id = $1, pesapal_redirect_url = $2
		WHERE id = $3
	`
	return r.exec(ctx, "failed to store payment session", id, query, trackingID, redirectURL, id)
}

// UpdatePayment persists the payment columns of m.
func (r *Repository) UpdatePayment(ctx context.Context, m *domain.MultipleOrder) error {
	query := `
		UPDATE multiple_orders
		SET payment_status = $1, is_paid_by_admin = $2, admin_payment_note = $3, paid_at = $4
		WHERE id = $5
	`
	return r.exec(ctx, "failed to update payment", m.ID, query, m.PaymentStatus, m.PaidByAdmin, m.AdminNote, m.PaidAt, m.ID)
}

func (r *Repository) MarkConverted(ctx context.Context, id int, itemIDs []int, at time.Time) error {
	result, err := json.Marshal(itemIDs)
	if err != nil {
		return err
	}
	query := `
		UPDATE multiple_orders
		SET conversion_status = $1, converted_at = $2, conversion_result = $3, conversion_error = ''
		WHERE id = $4
	`
	return r.exec(ctx, "failed to mark multiple order converted", id, query, domain.ConversionCompleted, at, result, id)
}

func (r *Repository) MarkConversionFailed(ctx context.Context, id int, reason string) error {
	query := `
		UPDATE multiple_orders
		SET conversion_status = $1, conversion_error = $2
		WHERE id = $3
	`
	return r.exec(ctx, "failed to record conversion failure", id, query, domain.ConversionFailed, reason, id)
}

// FindPendingPayments returns orders awaiting gateway confirmation, oldest first.
func (r *Repository) FindPendingPayments(ctx context.Context, limit uint32) ([]domain.MultipleOrder, error) {
	query := `SELECT ` + selectColumns + `
		FROM multiple_orders
		WHERE payment_status = 'PENDING' AND pesapal_tracking_id <> ''
		ORDER BY created_at ASC
		LIMIT $1`
	rows, err := r.db.Query(ctx, query, int(limit))
	if err != nil {
		zap.L().Error("can't get pending payments", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []domain.MultipleOrder
	for rows.Next() {
		m, err := scanMultipleOrder(rows)
		if err != nil {
			zap.L().Error("can't scan multiple order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, *m)
	}
	return orders, rows.Err()
}

func (r *Repository) exec(ctx context.Context, msg string, id int, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		zap.L().Error(msg, zap.Int("id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("multiple order %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
