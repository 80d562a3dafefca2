package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trenbolt-bot/internal/domain"
	"trenbolt-bot/internal/domain/model"
	"trenbolt-bot/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*PostgresUserRepo)(nil)

type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

const userColumns = `telegram_id, username, first_name, last_name, is_premium, usage_count, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.TelegramID, &u.Username, &u.FirstName, &u.LastName, &u.IsPremium, &u.UsageCount, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Upsert refreshes identity fields only; usage_count and created_at are left
// untouched on conflict so repeated /start calls stay idempotent.
func (r *PostgresUserRepo) Upsert(ctx context.Context, qx repository.Tx, u *model.User) (*model.User, error) {
	const q = `
INSERT INTO users (telegram_id, username, first_name, last_name)
VALUES ($1,$2,$3,$4)
ON CONFLICT (telegram_id) DO UPDATE SET
  username=EXCLUDED.username,
  first_name=EXCLUDED.first_name,
  last_name=EXCLUDED.last_name,
  updated_at=NOW()
RETURNING ` + userColumns + `;`
	ex, err := getExecutor(r.pool, qx)
	if err != nil {
		return nil, err
	}
	return scanUser(ex.QueryRow(ctx, q, u.TelegramID, u.Username, u.FirstName, u.LastName))
}

func (r *PostgresUserRepo) FindByTelegramID(ctx context.Context, qx repository.Tx, tgID int64) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE telegram_id=$1;`
	ex, err := getExecutor(r.pool, qx)
	if err != nil {
		return nil, err
	}
	return scanUser(ex.QueryRow(ctx, q, tgID))
}

func (r *PostgresUserRepo) List(ctx context.Context, qx repository.Tx, limit int) ([]*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}
	ex, err := getExecutor(r.pool, qx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q+";", args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.TelegramID, &u.Username, &u.FirstName, &u.LastName, &u.IsPremium, &u.UsageCount, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

func (r *PostgresUserRepo) IncrementUsage(ctx context.Context, qx repository.Tx, tgID int64) error {
	const q = `UPDATE users SET usage_count = usage_count + 1, updated_at = NOW() WHERE telegram_id=$1;`
	ex, err := getExecutor(r.pool, qx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, q, tgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepo) SetPremium(ctx context.Context, qx repository.Tx, tgID int64, premium bool) error {
	const q = `UPDATE users SET is_premium=$1, updated_at = NOW() WHERE telegram_id=$2;`
	ex, err := getExecutor(r.pool, qx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, q, premium, tgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepo) CountUsers(ctx context.Context, qx repository.Tx) (int, error) {
	ex, err := getExecutor(r.pool, qx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := ex.QueryRow(ctx, `SELECT COUNT(*) FROM users;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *PostgresUserRepo) CountPremiumUsers(ctx context.Context, qx repository.Tx) (int, error) {
	ex, err := getExecutor(r.pool, qx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := ex.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE is_premium;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count premium users: %w", err)
	}
	return n, nil
}
