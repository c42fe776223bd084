package userrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/pg"
	"go.uber.org/zap"
)

const selectColumns = `
	id, name, phone, email, COALESCE(member_id, ''), sponsor_id,
	COALESCE(parent_1, 0), COALESCE(parent_2, 0), COALESCE(parent_3, 0), COALESCE(parent_4, 0), COALESCE(parent_5, 0),
	COALESCE(parent_6, 0), COALESCE(parent_7, 0), COALESCE(parent_8, 0), COALESCE(parent_9, 0), COALESCE(parent_10, 0),
	is_dtehm_member, membership_started_at, membership_expires_at, created_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	dest := []any{&u.ID, &u.Name, &u.Phone, &u.Email, &u.MemberID, &u.SponsorID}
	for i := range u.Upline {
		dest = append(dest, &u.Upline[i])
	}
	dest = append(dest, &u.IsMember, &u.MembershipStartedAt, &u.MembershipExpiresAt, &u.CreatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &u, nil
}

func nullID(id int) *int {
	if id == 0 {
		return nil
	}
	return &id
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (
			name, phone, email, member_id, sponsor_id,
			parent_1, parent_2, parent_3, parent_4, parent_5,
			parent_6, parent_7, parent_8, parent_9, parent_10,
			is_dtehm_member, membership_started_at, membership_expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id, created_at
	`
	args := []any{user.Name, user.Phone, user.Email, nullString(user.MemberID), user.SponsorID}
	for _, id := range user.Upline {
		args = append(args, nullID(id))
	}
	args = append(args, user.IsMember, user.MembershipStartedAt, user.MembershipExpiresAt)

	err := r.db.QueryRow(ctx, query, args...).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return nil, fmt.Errorf("member %s: %w", user.MemberID, domain.ErrDuplicate)
		}
		zap.L().Error("can't save user", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user", zap.Int("id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (r *Repository) FindByMemberID(ctx context.Context, memberID string) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM users WHERE member_id = $1`, memberID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user by member id", zap.String("member_id", memberID), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// LockForUpdate takes the row lock that serialises balance-changing work for one user.
// It must run inside a transaction.
func (r *Repository) LockForUpdate(ctx context.Context, id int) error {
	var locked int
	err := r.db.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("user %d: %w", id, domain.ErrUnknownUser)
		}
		zap.L().Error("can't lock user", zap.Int("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ExistingIDs returns the subset of ids that still resolve to a user.
func (r *Repository) ExistingIDs(ctx context.Context, ids []int) (map[int]bool, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		zap.L().Error("can't resolve users", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	found := make(map[int]bool, len(ids))
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			zap.L().Error("can't scan user id", zap.Error(err))
			return nil, err
		}
		found[id] = true
	}
	return found, rows.Err()
}
