// File: internal/infra/adapters/telegram/command_route.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"trenbolt-bot/internal/domain"
	"trenbolt-bot/internal/domain/ports/adapter"
	"trenbolt-bot/internal/infra/logging"
	"trenbolt-bot/internal/infra/metrics"
	red "trenbolt-bot/internal/infra/redis"
)

const rateLimitText = "⏳ Terlalu banyak permintaan. Silakan coba lagi sebentar lagi."

// maxAudioDownload caps voice/audio downloads; Telegram bot files top out at
// 20 MB anyway.
const maxAudioDownload = 20 << 20

func (r *RealTelegramBotAdapter) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	from := msg.From
	chatID := msg.Chat.ID
	ctx = logging.WithChatID(logging.WithTgID(ctx, from.ID), chatID)

	command := "message"
	if msg.IsCommand() {
		command = msg.Command()
	}
	metrics.IncTelegramCommand(command)
	if !r.allow(ctx, from.ID, command) {
		return r.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: rateLimitText})
	}

	switch command {
	case "start":
		text, err := r.facade.HandleStart(ctx, from.ID, from.UserName, from.FirstName, from.LastName)
		if err != nil {
			r.log.Error().Err(err).Int64("tg_id", from.ID).Msg("start failed")
			return r.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: "❌ Gagal menginisialisasi user. Silakan coba lagi."})
		}
		return r.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: text})

	case "help":
		return r.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: r.facade.HandleHelp(ctx)})

	case "premium":
		return r.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: r.facade.HandlePremiumInfo(ctx)})

	case "admin":
		if r.admin == nil {
			return r.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: "❌ Fitur admin sedang tidak tersedia."})
		}
		return r.admin.HandlePanel(ctx, chatID, from.ID)

	case "export_users":
		if r.admin == nil {
			return r.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: "❌ Fitur admin sedang tidak tersedia."})
		}
		return r.admin.HandleExport(ctx, chatID, from.ID)

	case "message":
		return r.handleContent(ctx, msg)

	default:
		return r.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: "Perintah tidak dikenal. Lihat /help."})
	}
}

// handleContent deals with non-command messages: voice, audio and free text.
func (r *RealTelegramBotAdapter) handleContent(ctx context.Context, msg *tgbotapi.Message) error {
	from := msg.From
	chatID := msg.Chat.ID

	switch {
	case msg.Voice != nil:
		return r.handleAudioPayload(ctx, chatID, from.ID, msg.Voice.FileID, "voice.ogg", true)

	case msg.Audio != nil:
		name := msg.Audio.FileName
		if name == "" {
			name = "audio.mp3"
		}
		return r.handleAudioPayload(ctx, chatID, from.ID, msg.Audio.FileID, name, false)

	case msg.Text != "":
		if r.admin != nil {
			handled, err := r.admin.MaybeHandleText(ctx, chatID, from.ID, msg.Text)
			if handled || err != nil {
				return err
			}
		}
		_ = r.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: "🔄 Menganalisis teks..."})
		reply, err := r.facade.HandleText(ctx, from.ID, msg.Text)
		if err != nil {
			if errors.Is(err, domain.ErrEmptyInput) {
				return r.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: "Silakan kirim teks yang ingin dianalisis."})
			}
			r.log.Error().Err(err).Int64("tg_id", from.ID).Msg("text analysis failed")
			return r.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: "❌ Maaf, terjadi error saat menganalisis teks. Silakan coba lagi."})
		}
		return r.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: reply})
	}
	return nil
}

func (r *RealTelegramBotAdapter) handleAudioPayload(ctx context.Context, chatID, tgID int64, fileID, filename string, isVoice bool) error {
	_ = r.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: "🔊 Memproses audio..."})

	defer logging.TraceDuration(logging.With(ctx, r.log), "telegram.handleAudioPayload")()
	data, err := r.downloadFile(ctx, fileID)
	if err != nil {
		r.log.Error().Err(err).Str("file_id", fileID).Msg("audio download failed")
		return r.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: "❌ Error memproses audio. Silakan coba lagi."})
	}

	var reply string
	if isVoice {
		reply, err = r.facade.HandleVoice(ctx, tgID, filename, data)
	} else {
		reply, err = r.facade.HandleAudio(ctx, tgID, filename, data)
	}
	if err != nil {
		r.log.Warn().Err(err).Int64("tg_id", tgID).Msg("transcription failed")
		return r.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: "❌ Tidak dapat mengenali suara. Pastikan audio jelas dan tidak ada noise."})
	}
	return r.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: reply})
}

func (r *RealTelegramBotAdapter) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	url, err := r.bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxAudioDownload))
}

// allow consults the Redis rate limiter when configured; without Redis the
// bot runs unthrottled.
func (r *RealTelegramBotAdapter) allow(ctx context.Context, tgID int64, command string) bool {
	if r.rateLimiter == nil {
		return true
	}
	allowed, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(tgID, command), 20, time.Minute)
	if err != nil {
		r.log.Warn().Err(err).Msg("rate limiter error")
		return true
	}
	if !allowed {
		metrics.IncRateLimitTriggered()
	}
	return allowed
}
