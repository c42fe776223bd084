package adminrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/pg"
	"go.uber.org/zap"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (repo *Repository) FindByLogin(ctx context.Context, login string) (*domain.Admin, error) {
	var admin domain.Admin
	err := repo.db.QueryRow(ctx, "SELECT id, login, password_hash, created_at FROM admins WHERE login = $1", login).
		Scan(&admin.ID, &admin.Login, &admin.PasswordHash, &admin.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find admin", zap.Error(err))
		return nil, err
	}
	return &admin, nil
}

func (repo *Repository) Create(ctx context.Context, admin *domain.Admin) (*domain.Admin, error) {
	query := `
		INSERT INTO admins (login, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	err := repo.db.QueryRow(ctx, query, admin.Login, admin.PasswordHash).Scan(&admin.ID, &admin.CreatedAt)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return nil, fmt.Errorf("admin %s: %w", admin.Login, domain.ErrDuplicate)
		}
		zap.L().Error("can't save admin", zap.Error(err))
		return nil, err
	}
	return admin, nil
}
