package productrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productColumns = []string{"id", "name", "price", "description", "tags", "attributes", "processed_at", "created_at"}

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDB.Close)
	return New(mockDB), mockDB
}

func TestRepository_FindByID(t *testing.T) {
	repo, mock := NewMock(t)
	created := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		result    *domain.Product
	}{
		{
			name: "Product with extracted attributes",
			mockSetup: func() {
				mock.ExpectQuery(`SELECT (.+) FROM products WHERE id = \$1`).WithArgs(3).
					WillReturnRows(pgxmock.NewRows(productColumns).AddRow(
						3, "Moringa", decimal.NewFromInt(25000), "desc", []string{"herbal"},
						[]byte(`{"Weight":"500g"}`), nil, created,
					))
			},
			result: &domain.Product{
				ID: 3, Name: "Moringa", Price: decimal.NewFromInt(25000), Description: "desc",
				Tags: []string{"herbal"}, Attributes: map[string]string{"Weight": "500g"}, CreatedAt: created,
			},
		},
		{
			name: "Product not found",
			mockSetup: func() {
				mock.ExpectQuery(`SELECT (.+) FROM products WHERE id = \$1`).WithArgs(3).WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(`SELECT (.+) FROM products WHERE id = \$1`).WithArgs(3).WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.FindByID(context.Background(), 3)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.result, result)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_FindByIDs(t *testing.T) {
	repo, mock := NewMock(t)
	created := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM products WHERE id = ANY\(\$1\)`).
		WithArgs([]int{1, 2}).
		WillReturnRows(pgxmock.NewRows(productColumns).
			AddRow(1, "Soap", decimal.NewFromInt(5000), "", []string{}, []byte(`{}`), nil, created))

	products, err := repo.FindByIDs(context.Background(), []int{1, 2})
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, "Soap", products[1].Name)
	assert.NotContains(t, products, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)
	created := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO products`).
		WithArgs("Soap", decimal.NewFromInt(5000), "").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(8, created))

	product, err := repo.Create(context.Background(), &domain.Product{Name: "Soap", Price: decimal.NewFromInt(5000)})
	require.NoError(t, err)
	assert.Equal(t, 8, product.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SaveExtraction(t *testing.T) {
	repo, mock := NewMock(t)
	at := time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE products`).
		WithArgs([]string{"herbal"}, []byte(`{"Weight":"500g"}`), at, 3).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	assert.NoError(t, repo.SaveExtraction(context.Background(), 3, []string{"herbal"}, map[string]string{"Weight": "500g"}, at))

	mock.ExpectExec(`UPDATE products`).
		WithArgs([]string{}, []byte(`{}`), at, 4).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.SaveExtraction(context.Background(), 4, []string{}, map[string]string{}, at), domain.ErrMissingProduct)

	assert.NoError(t, mock.ExpectationsWereMet())
}
