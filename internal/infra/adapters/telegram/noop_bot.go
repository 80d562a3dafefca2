package telegram

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"trenbolt-bot/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*NoopBotAdapter)(nil)

// NoopBotAdapter implements adapter.TelegramBotAdapter for local/dev runs.
// It logs messages instead of sending real Telegram messages.
type NoopBotAdapter struct {
	log *zerolog.Logger
}

func NewNoopBotAdapter(logger *zerolog.Logger) *NoopBotAdapter {
	return &NoopBotAdapter{log: logger}
}

func (b *NoopBotAdapter) SendMessage(ctx context.Context, params adapter.SendMessageParams) error {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}
	b.log.Info().Int64("chat_id", params.ChatID).Str("text", params.Text).Msg("[noop-telegram] SendMessage")
	return nil
}

func (b *NoopBotAdapter) EditMessage(ctx context.Context, params adapter.EditMessageParams) error {
	b.log.Info().Int64("chat_id", params.ChatID).Int("message_id", params.MessageID).Str("text", params.Text).Msg("[noop-telegram] EditMessage")
	return nil
}

func (b *NoopBotAdapter) SendDocument(ctx context.Context, params adapter.DocumentParams) error {
	b.log.Info().Int64("chat_id", params.ChatID).Str("filename", params.Filename).Int("bytes", len(params.Data)).Msg("[noop-telegram] SendDocument")
	return nil
}
