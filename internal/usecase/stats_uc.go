package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"trenbolt-bot/internal/domain/ports/repository"
	"trenbolt-bot/internal/infra/metrics"
)

type StatsUseCase interface {
	// Aggregate computes the admin stats snapshot.
	Aggregate(ctx context.Context) (*repository.UsageStats, error)
}

var _ StatsUseCase = (*statsUC)(nil)

type statsUC struct {
	users repository.UserRepository
	usage repository.UsageRepository
	log   *zerolog.Logger
}

func NewStatsUseCase(
	users repository.UserRepository,
	usage repository.UsageRepository,
	logger *zerolog.Logger,
) StatsUseCase {
	return &statsUC{users: users, usage: usage, log: logger}
}

func (uc *statsUC) Aggregate(ctx context.Context) (*repository.UsageStats, error) {
	var (
		s   repository.UsageStats
		err error
	)
	now := time.Now()

	if s.TotalUsers, err = uc.users.CountUsers(ctx, repository.NoTX); err != nil {
		return nil, err
	}
	if s.PremiumUsers, err = uc.users.CountPremiumUsers(ctx, repository.NoTX); err != nil {
		return nil, err
	}
	if s.ActiveUsers30d, err = uc.usage.CountActiveUsersSince(ctx, repository.NoTX, now.AddDate(0, 0, -30)); err != nil {
		return nil, err
	}
	if s.TotalUsage, err = uc.usage.CountTotal(ctx, repository.NoTX); err != nil {
		return nil, err
	}
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if s.UsageToday, err = uc.usage.CountSince(ctx, repository.NoTX, midnight); err != nil {
		return nil, err
	}
	if s.UsageThisMonth, err = uc.usage.CountThisMonth(ctx, repository.NoTX); err != nil {
		return nil, err
	}

	metrics.SetUserTotals(s.TotalUsers, s.PremiumUsers)
	return &s, nil
}
