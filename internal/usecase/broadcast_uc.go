package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"trenbolt-bot/internal/domain"
	"trenbolt-bot/internal/domain/ports/adapter"
	"trenbolt-bot/internal/domain/ports/repository"
	"trenbolt-bot/internal/infra/metrics"
)

// BroadcastReport summarizes a finished fan-out. Total is always the number
// of users attempted, so Success+Fail == Total.
type BroadcastReport struct {
	Success int
	Fail    int
	Total   int
}

type BroadcastUseCase interface {
	// Broadcast sends the message to every registered user sequentially and
	// returns the delivery report. Individual send failures are counted,
	// never propagated; the fan-out always runs to completion.
	Broadcast(ctx context.Context, message string) (BroadcastReport, error)
}

var _ BroadcastUseCase = (*broadcastUC)(nil)

type broadcastUC struct {
	users repository.UserRepository
	bot   adapter.TelegramBotAdapter
	log   *zerolog.Logger
}

func NewBroadcastUseCase(
	users repository.UserRepository,
	bot adapter.TelegramBotAdapter,
	logger *zerolog.Logger,
) BroadcastUseCase {
	return &broadcastUC{users: users, bot: bot, log: logger}
}

func (uc *broadcastUC) Broadcast(ctx context.Context, message string) (BroadcastReport, error) {
	if strings.TrimSpace(message) == "" {
		return BroadcastReport{}, domain.ErrEmptyInput
	}

	allUsers, err := uc.users.List(ctx, repository.NoTX, 0)
	if err != nil {
		uc.log.Error().Err(err).Msg("Failed to fetch all users for broadcast")
		return BroadcastReport{}, err
	}

	broadcastID := uuid.NewString()
	report := BroadcastReport{Total: len(allUsers)}

	// Throttle to respect Telegram's API limits (approx. 30 messages/sec)
	throttle := time.NewTicker(time.Second / 25)
	defer throttle.Stop()

	uc.log.Info().Str("broadcast_id", broadcastID).Int("user_count", report.Total).Msg("Starting broadcast")
	for _, user := range allUsers {
		<-throttle.C

		err := uc.bot.SendMessage(ctx, adapter.SendMessageParams{
			ChatID: user.TelegramID,
			Text:   message,
		})
		if err != nil {
			// Typical cause: the user blocked the bot. Count and move on.
			report.Fail++
			uc.log.Warn().Err(err).Str("broadcast_id", broadcastID).Int64("tg_id", user.TelegramID).Msg("Failed to send broadcast message to user")
			continue
		}
		report.Success++
	}

	metrics.AddBroadcastResults(report.Success, report.Fail)
	uc.log.Info().
		Str("broadcast_id", broadcastID).
		Int("success", report.Success).
		Int("fail", report.Fail).
		Msg("Broadcast finished")
	return report, nil
}
