package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"trenbolt-bot/internal/application"
	"trenbolt-bot/internal/config"
	"trenbolt-bot/internal/domain/ports/adapter"
	"trenbolt-bot/internal/infra/logging"
	red "trenbolt-bot/internal/infra/redis"
	"trenbolt-bot/internal/infra/worker"
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// RealTelegramBotAdapter is the tgbotapi-backed transport. It pumps updates
// from long polling or the webhook channel into a worker pool and delegates
// the actual handling to the facade and the admin dispatcher.
type RealTelegramBotAdapter struct {
	bot         *tgbotapi.BotAPI
	cfg         *config.BotConfig
	facade      *application.BotFacade
	admin       *AdminDispatcher
	rateLimiter *red.RateLimiter // nil when Redis is not configured
	pool        *worker.Pool
	dev         bool
	log         *zerolog.Logger

	webhookUpdates chan tgbotapi.Update
	cancelPump     context.CancelFunc
	stopOnce       sync.Once
}

func NewRealTelegramBotAdapter(
	cfg *config.BotConfig,
	facade *application.BotFacade,
	rateLimiter *red.RateLimiter,
	pool *worker.Pool,
	dev bool,
	logger *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	return &RealTelegramBotAdapter{
		bot:            bot,
		cfg:            cfg,
		facade:         facade,
		rateLimiter:    rateLimiter,
		pool:           pool,
		dev:            dev,
		log:            logger,
		webhookUpdates: make(chan tgbotapi.Update, 100),
	}, nil
}

// SetAdminDispatcher wires the admin console. The dispatcher needs the bot
// as its outbound port, so it is attached after construction.
func (r *RealTelegramBotAdapter) SetAdminDispatcher(d *AdminDispatcher) { r.admin = d }

func (r *RealTelegramBotAdapter) Username() string { return r.bot.Self.UserName }

// Start pumps updates until the context is canceled. With a webhook URL
// configured it registers the webhook and consumes FeedUpdate; otherwise it
// long-polls.
func (r *RealTelegramBotAdapter) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	r.cancelPump = cancel

	var updates <-chan tgbotapi.Update
	if r.cfg.WebhookURL != "" {
		wh, err := tgbotapi.NewWebhook(strings.TrimRight(r.cfg.WebhookURL, "/") + "/webhook/" + r.cfg.Token)
		if err != nil {
			return err
		}
		if _, err := r.bot.Request(wh); err != nil {
			return err
		}
		r.log.Info().Str("url", logging.Redact(r.cfg.WebhookURL, r.dev)).Msg("webhook registered")
		updates = r.webhookUpdates
	} else {
		if _, err := r.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			r.log.Warn().Err(err).Msg("failed to delete webhook before polling")
		}
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		updates = r.bot.GetUpdatesChan(u)
		r.log.Info().Msg("long polling started")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case up := <-updates:
			update := up
			if err := r.pool.Submit(func(ctx context.Context) error {
				return r.handleUpdate(ctx, update)
			}); err != nil {
				// Queue saturated: handle inline rather than drop the update.
				if err := r.handleUpdate(ctx, update); err != nil {
					r.log.Error().Err(err).Msg("update handling failed")
				}
			}
		}
	}
}

func (r *RealTelegramBotAdapter) Stop() {
	r.stopOnce.Do(func() {
		if r.cancelPump != nil {
			r.cancelPump()
		}
		r.bot.StopReceivingUpdates()
	})
}

// FeedUpdate injects a webhook-delivered update into the pump.
func (r *RealTelegramBotAdapter) FeedUpdate(update tgbotapi.Update) {
	select {
	case r.webhookUpdates <- update:
	default:
		r.log.Warn().Msg("webhook update queue full, dropping update")
	}
}

// ---- adapter.TelegramBotAdapter ----

func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, params adapter.SendMessageParams) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := tgbotapi.NewMessage(params.ChatID, params.Text)
	if kb, ok := toInlineKeyboard(params.ReplyMarkup); ok {
		msg.ReplyMarkup = kb
	}
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) EditMessage(ctx context.Context, params adapter.EditMessageParams) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	edit := tgbotapi.NewEditMessageText(params.ChatID, params.MessageID, params.Text)
	if kb, ok := toInlineKeyboard(params.ReplyMarkup); ok {
		edit.ReplyMarkup = &kb
	}
	_, err := r.bot.Send(edit)
	return err
}

func (r *RealTelegramBotAdapter) SendDocument(ctx context.Context, params adapter.DocumentParams) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	doc := tgbotapi.NewDocument(params.ChatID, tgbotapi.FileBytes{
		Name:  params.Filename,
		Bytes: params.Data,
	})
	doc.Caption = params.Caption
	_, err := r.bot.Send(doc)
	return err
}

func toInlineKeyboard(rows [][]adapter.Button) (tgbotapi.InlineKeyboardMarkup, bool) {
	if len(rows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		out := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			var kb tgbotapi.InlineKeyboardButton
			switch {
			case btn.URL != "":
				kb = tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL)
			case btn.Data != "":
				kb = tgbotapi.NewInlineKeyboardButtonData(label, btn.Data)
			default:
				kb = tgbotapi.NewInlineKeyboardButtonData(label, label)
			}
			out = append(out, kb)
		}
		kbRows = append(kbRows, out)
	}
	if len(kbRows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(kbRows...), true
}

// handleUpdate is the per-update entry point run on a pool worker.
func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	ctx = logging.WithTraceID(ctx, uuid.NewString())

	if update.CallbackQuery != nil {
		return r.handleQuery(ctx, update.CallbackQuery)
	}
	if update.Message == nil || update.Message.From == nil {
		return nil
	}
	return r.handleMessage(ctx, update.Message)
}

func (r *RealTelegramBotAdapter) handleQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query.From == nil {
		return errors.New("invalid callback query")
	}
	// Stop the telegram spinner when we return.
	defer func() { _, _ = r.bot.Request(tgbotapi.NewCallback(query.ID, "")) }()

	chatID := query.From.ID
	messageID := 0
	if query.Message != nil {
		messageID = query.Message.MessageID
		if query.Message.Chat != nil {
			chatID = query.Message.Chat.ID
		}
	}
	if chatID == 0 {
		return nil
	}
	ctx = logging.WithChatID(logging.WithTgID(ctx, query.From.ID), chatID)

	data := strings.TrimSpace(query.Data)
	if !r.allow(ctx, query.From.ID, "cb") {
		return r.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: rateLimitText})
	}
	if r.admin == nil {
		return nil
	}
	return r.admin.HandleCallback(ctx, chatID, messageID, query.From.ID, data)
}
