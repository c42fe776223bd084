package orderrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/pg"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var itemColumns = buildItemColumns()

func buildItemColumns() string {
	cols := []string{
		"id", "order_id", "multiple_order_id", "product_id", "qty", "unit_price", "subtotal",
		"color", "size", "has_dtehm_seller", "COALESCE(dtehm_user_id, 0)", "item_is_paid", "paid_at",
		"commission_state", "commission_processed_at", "commission_seller",
	}
	for k := 1; k <= domain.UplineDepth; k++ {
		cols = append(cols, fmt.Sprintf("COALESCE(commission_parent_%d, 0)", k))
	}
	for k := 1; k <= domain.UplineDepth; k++ {
		cols = append(cols, fmt.Sprintf("COALESCE(parent_%d_user_id, 0)", k))
	}
	cols = append(cols, "total_commission_amount", "created_at")
	return strings.Join(cols, ", ")
}

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanItem(row pgx.Row) (*domain.OrderedItem, error) {
	var it domain.OrderedItem
	dest := []any{
		&it.ID, &it.OrderID, &it.MultipleOrderID, &it.ProductID, &it.Qty, &it.UnitPrice, &it.Subtotal,
		&it.Color, &it.Size, &it.HasDtehmSeller, &it.SellerID, &it.Paid, &it.PaidAt,
		&it.CommissionState, &it.Commission.ProcessedAt, &it.Commission.Seller,
	}
	for k := range it.Commission.Levels {
		dest = append(dest, &it.Commission.Levels[k].Amount)
	}
	for k := range it.Commission.Levels {
		dest = append(dest, &it.Commission.Levels[k].UserID)
	}
	dest = append(dest, &it.Commission.Total, &it.CreatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &it, nil
}

func nullID(id int) *int {
	if id == 0 {
		return nil
	}
	return &id
}

func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	query := `
		INSERT INTO orders (user_id, order_number, total)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, order.UserID, order.OrderNumber, order.Total).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return nil, fmt.Errorf("order %s: %w", order.OrderNumber, domain.ErrDuplicate)
		}
		zap.L().Error("can't save order", zap.Error(err))
		return nil, err
	}
	return order, nil
}

func (r *Repository) FindByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	query := `
		SELECT id, user_id, order_number, total, created_at
		FROM orders
		WHERE order_number = $1
	`
	var order domain.Order
	err := r.db.QueryRow(ctx, query, orderNumber).
		Scan(&order.ID, &order.UserID, &order.OrderNumber, &order.Total, &order.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find order", zap.Error(err))
		return nil, err
	}
	return &order, nil
}

func (r *Repository) CreateItem(ctx context.Context, item *domain.OrderedItem) (*domain.OrderedItem, error) {
	query := `
		INSERT INTO ordered_items (
			order_id, multiple_order_id, product_id, qty, unit_price, subtotal,
			color, size, has_dtehm_seller, dtehm_user_id, item_is_paid, paid_at, commission_state
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at
	`
	if item.CommissionState == "" {
		item.CommissionState = domain.CommissionPending
	}
	err := r.db.QueryRow(ctx, query,
		item.OrderID, item.MultipleOrderID, item.ProductID, item.Qty, item.UnitPrice, item.Subtotal,
		item.Color, item.Size, item.HasDtehmSeller, nullID(item.SellerID), item.Paid, item.PaidAt,
		item.CommissionState,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		zap.L().Error("can't save ordered item", zap.Int("product_id", item.ProductID), zap.Error(err))
		return nil, err
	}
	return item, nil
}

func (r *Repository) FindItem(ctx context.Context, id int) (*domain.OrderedItem, error) {
	item, err := scanItem(r.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM ordered_items WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find ordered item", zap.Int("id", id), zap.Error(err))
		return nil, err
	}
	return item, nil
}

// FindItemForUpdate loads the item and holds its row lock until the surrounding transaction ends.
func (r *Repository) FindItemForUpdate(ctx context.Context, id int) (*domain.OrderedItem, error) {
	item, err := scanItem(r.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM ordered_items WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't lock ordered item", zap.Int("id", id), zap.Error(err))
		return nil, err
	}
	return item, nil
}

// MarkItemPaid flips the paid flag once. It reports false when the item was already paid.
func (r *Repository) MarkItemPaid(ctx context.Context, id int, paidAt time.Time) (bool, error) {
	query := `
		UPDATE ordered_items
		SET item_is_paid = TRUE, paid_at = $1
		WHERE id = $2 AND item_is_paid = FALSE
	`
	tag, err := r.db.Exec(ctx, query, paidAt, id)
	if err != nil {
		zap.L().Error("failed to mark item paid", zap.Int("id", id), zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) SaveCommission(ctx context.Context, id int, c domain.Commission) error {
	sets := []string{"commission_seller = $1"}
	args := []any{c.Seller}
	for k, share := range c.Levels {
		var amount *decimal.Decimal
		if share.UserID != 0 {
			a := share.Amount
			amount = &a
		}
		args = append(args, amount, nullID(share.UserID))
		sets = append(sets,
			fmt.Sprintf("commission_parent_%d = $%d", k+1, len(args)-1),
			fmt.Sprintf("parent_%d_user_id = $%d", k+1, len(args)),
		)
	}
	args = append(args, c.Total, c.ProcessedAt, domain.CommissionProcessed, id)
	n := len(args)
	query := fmt.Sprintf(`
		UPDATE ordered_items
		SET %s, total_commission_amount = $%d, commission_processed_at = $%d, commission_state = $%d
		WHERE id = $%d
	`, strings.Join(sets, ", "), n-3, n-2, n-1, n)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		zap.L().Error("failed to save commission", zap.Int("id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ordered item %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// FindPendingCommission lists paid items with a seller whose commission has not been distributed yet.
func (r *Repository) FindPendingCommission(ctx context.Context, limit uint32) ([]int, error) {
	query := `
		SELECT id
		FROM ordered_items
		WHERE item_is_paid = TRUE AND has_dtehm_seller = TRUE AND commission_state = 'PENDING'
		ORDER BY id ASC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, int(limit))
	if err != nil {
		zap.L().Error("can't get items for commission", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			zap.L().Error("can't scan item id", zap.Error(err))
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
