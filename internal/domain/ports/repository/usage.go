package repository

import (
	"context"
	"time"

	"trenbolt-bot/internal/domain/model"
)

// UsageStats is the aggregate view the admin stats panel renders.
type UsageStats struct {
	TotalUsers     int
	PremiumUsers   int
	ActiveUsers30d int
	TotalUsage     int
	UsageToday     int
	UsageThisMonth int
}

// UsageRepository is the append-only usage event log.
type UsageRepository interface {
	Append(ctx context.Context, tx Tx, ev *model.UsageEvent) error

	CountTotal(ctx context.Context, tx Tx) (int, error)
	CountSince(ctx context.Context, tx Tx, since time.Time) (int, error)
	CountThisMonth(ctx context.Context, tx Tx) (int, error)

	// CountActiveUsersSince counts distinct users with at least one event
	// after the given instant.
	CountActiveUsersSince(ctx context.Context, tx Tx, since time.Time) (int, error)
}
