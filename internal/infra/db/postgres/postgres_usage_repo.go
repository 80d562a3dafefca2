package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"trenbolt-bot/internal/domain/model"
	"trenbolt-bot/internal/domain/ports/repository"
)

var _ repository.UsageRepository = (*PostgresUsageRepo)(nil)

// PostgresUsageRepo is the append-only usage log. Rows are never updated or
// deleted.
type PostgresUsageRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUsageRepo(pool *pgxpool.Pool) *PostgresUsageRepo {
	return &PostgresUsageRepo{pool: pool}
}

func (r *PostgresUsageRepo) Append(ctx context.Context, qx repository.Tx, ev *model.UsageEvent) error {
	const q = `INSERT INTO user_usage (user_id, action_type, timestamp, details) VALUES ($1,$2,$3,$4);`
	ex, err := getExecutor(r.pool, qx)
	if err != nil {
		return err
	}
	var details interface{}
	if len(ev.Details) > 0 {
		b, err := json.Marshal(ev.Details)
		if err != nil {
			return fmt.Errorf("marshal details: %w", err)
		}
		details = b
	}
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err = ex.Exec(ctx, q, ev.TelegramID, ev.ActionType, ts, details)
	return err
}

func (r *PostgresUsageRepo) CountTotal(ctx context.Context, qx repository.Tx) (int, error) {
	return r.countWhere(ctx, qx, `SELECT COUNT(*) FROM user_usage;`)
}

func (r *PostgresUsageRepo) CountSince(ctx context.Context, qx repository.Tx, since time.Time) (int, error) {
	return r.countWhere(ctx, qx, `SELECT COUNT(*) FROM user_usage WHERE timestamp >= $1;`, since)
}

func (r *PostgresUsageRepo) CountThisMonth(ctx context.Context, qx repository.Tx) (int, error) {
	return r.countWhere(ctx, qx, `
SELECT COUNT(*) FROM user_usage
 WHERE EXTRACT(MONTH FROM timestamp) = EXTRACT(MONTH FROM CURRENT_DATE)
   AND EXTRACT(YEAR FROM timestamp) = EXTRACT(YEAR FROM CURRENT_DATE);`)
}

func (r *PostgresUsageRepo) CountActiveUsersSince(ctx context.Context, qx repository.Tx, since time.Time) (int, error) {
	return r.countWhere(ctx, qx, `SELECT COUNT(DISTINCT user_id) FROM user_usage WHERE timestamp >= $1;`, since)
}

func (r *PostgresUsageRepo) countWhere(ctx context.Context, qx repository.Tx, q string, args ...interface{}) (int, error) {
	ex, err := getExecutor(r.pool, qx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := ex.QueryRow(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count usage: %w", err)
	}
	return n, nil
}
