package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"trenbolt-bot/internal/usecase"
)

// StatsReporter periodically recomputes the usage aggregates, which also
// refreshes the user-count gauges exported to Prometheus.
type StatsReporter struct {
	interval time.Duration
	statsUC  usecase.StatsUseCase
	log      *zerolog.Logger
}

func NewStatsReporter(interval time.Duration, statsUC usecase.StatsUseCase, logger *zerolog.Logger) *StatsReporter {
	compLog := logger.With().Str("component", "StatsReporter").Logger()
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &StatsReporter{
		interval: interval,
		statsUC:  statsUC,
		log:      &compLog,
	}
}

func (w *StatsReporter) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting stats reporter")
	// Run once on startup, then on every tick
	w.report(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping stats reporter")
			return ctx.Err()
		case <-ticker.C:
			w.report(ctx)
		}
	}
}

func (w *StatsReporter) report(ctx context.Context) {
	s, err := w.statsUC.Aggregate(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("stats aggregation failed")
		return
	}
	w.log.Info().
		Int("total_users", s.TotalUsers).
		Int("premium_users", s.PremiumUsers).
		Int("usage_today", s.UsageToday).
		Msg("usage snapshot")
}
