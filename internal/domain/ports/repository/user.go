package repository

import (
	"context"

	"trenbolt-bot/internal/domain/model"
)

// UserRepository persists users keyed by Telegram ID.
type UserRepository interface {
	// Upsert inserts the user or refreshes identity fields (username,
	// first/last name) on conflict. usage_count and created_at are never
	// touched by an upsert. Returns the stored row.
	Upsert(ctx context.Context, tx Tx, u *model.User) (*model.User, error)

	FindByTelegramID(ctx context.Context, tx Tx, tgID int64) (*model.User, error)

	// List returns users ordered by creation time, newest first.
	// limit <= 0 means no limit.
	List(ctx context.Context, tx Tx, limit int) ([]*model.User, error)

	// IncrementUsage bumps usage_count by one and refreshes updated_at.
	IncrementUsage(ctx context.Context, tx Tx, tgID int64) error

	SetPremium(ctx context.Context, tx Tx, tgID int64, premium bool) error

	CountUsers(ctx context.Context, tx Tx) (int, error)
	CountPremiumUsers(ctx context.Context, tx Tx) (int, error)
}
