package productrepo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/pg"
	"go.uber.org/zap"
)

const selectColumns = `id, name, price, description, tags, attributes, processed_at, created_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p     domain.Product
		attrs []byte
	)
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.Tags, &attrs, &p.ProcessedAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &p.Attributes); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func (r *Repository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO products (name, price, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, product.Name, product.Price, product.Description).Scan(&product.ID, &product.CreatedAt)
	if err != nil {
		zap.L().Error("can't save product", zap.Error(err))
		return nil, err
	}
	return product, nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.Product, error) {
	product, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find product", zap.Int("id", id), zap.Error(err))
		return nil, err
	}
	return product, nil
}

// FindByIDs returns the products that exist among ids, keyed by id.
func (r *Repository) FindByIDs(ctx context.Context, ids []int) (map[int]*domain.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+selectColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		zap.L().Error("can't get products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	products := make(map[int]*domain.Product, len(ids))
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			zap.L().Error("can't scan product row", zap.Error(err))
			return nil, err
		}
		products[product.ID] = product
	}
	return products, rows.Err()
}

func (r *Repository) SaveExtraction(ctx context.Context, id int, tags []string, attributes map[string]string, processedAt time.Time) error {
	attrs, err := json.Marshal(attributes)
	if err != nil {
		return err
	}
	query := `
		UPDATE products
		SET tags = $1, attributes = $2, processed_at = $3
		WHERE id = $4
	`
	tag, err := r.db.Exec(ctx, query, tags, attrs, processedAt, id)
	if err != nil {
		zap.L().Error("failed to update product", zap.Int("id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMissingProduct
	}
	return nil
}
