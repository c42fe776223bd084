package adminrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	t.Cleanup(mockDB.Close)

	return repo, mockDB
}

func TestRepository_FindByLogin(t *testing.T) {
	repo, mock := NewMock(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	query := regexp.QuoteMeta("SELECT id, login, password_hash, created_at FROM admins WHERE login = $1")

	tests := []struct {
		name      string
		login     string
		mockSetup func()
		expectErr bool
		result    *domain.Admin
	}{
		{
			name:  "Admin found",
			login: "root",
			mockSetup: func() {
				rows := pgxmock.NewRows([]string{"id", "login", "password_hash", "created_at"}).
					AddRow(1, "root", "hashed_password", created)
				mock.ExpectQuery(query).WithArgs("root").WillReturnRows(rows)
			},
			result: &domain.Admin{ID: 1, Login: "root", PasswordHash: "hashed_password", CreatedAt: created},
		},
		{
			name:  "Admin not found",
			login: "ghost",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs("ghost").WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			name:  "Database error",
			login: "root",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs("root").WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.FindByLogin(context.Background(), tt.login)
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

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	query := `INSERT INTO admins \(login, password_hash\)`

	t.Run("Admin created", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("root", "hash").
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(5, created))

		admin, err := repo.Create(context.Background(), &domain.Admin{Login: "root", PasswordHash: "hash"})
		assert.NoError(t, err)
		assert.Equal(t, &domain.Admin{ID: 5, Login: "root", PasswordHash: "hash", CreatedAt: created}, admin)
	})

	t.Run("Duplicate login", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("root", "hash").
			WillReturnError(&pgconn.PgError{Code: "23505"})

		admin, err := repo.Create(context.Background(), &domain.Admin{Login: "root", PasswordHash: "hash"})
		assert.Nil(t, admin)
		assert.ErrorIs(t, err, domain.ErrDuplicate)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
