// File: internal/infra/adapters/telegram/admin_route.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"trenbolt-bot/internal/domain"
	"trenbolt-bot/internal/domain/ports/adapter"
	"trenbolt-bot/internal/domain/ports/repository"
	"trenbolt-bot/internal/infra/metrics"
	"trenbolt-bot/internal/usecase"
)

// Callback action tokens. Exact tokens first, then the prefixed ones that
// carry a Telegram ID suffix.
const (
	cbAdminStats     = "admin_stats"
	cbAdminUsers     = "admin_users"
	cbAdminBroadcast = "admin_broadcast"
	cbAdminBack      = "admin_back"

	cbConfirmBroadcast = "confirm_broadcast"
	cbCancelBroadcast  = "cancel_broadcast"

	cbPrefixUserDetail    = "user_detail_"
	cbPrefixPremiumToggle = "premium_toggle_"
)

const (
	accessDeniedText      = "❌ Akses ditolak. Hanya admin yang dapat menggunakan perintah ini."
	accessDeniedShortText = "❌ Akses ditolak."
	notImplementedText    = "⚠️ Fitur ini sedang dalam pengembangan."
	userListLimit         = 10
)

// AdminDispatcher owns the inline-keyboard admin console: menu navigation,
// the broadcast confirmation flow, user management and the CSV export. It
// talks only to ports and usecases, so it is testable without a live bot.
type AdminDispatcher struct {
	adminIDs    map[int64]struct{}
	bot         adapter.TelegramBotAdapter
	states      repository.AdminStateRepository
	userUC      usecase.UserUseCase
	statsUC     usecase.StatsUseCase
	broadcastUC usecase.BroadcastUseCase
	exportUC    usecase.ExportUseCase
	log         *zerolog.Logger
}

func NewAdminDispatcher(
	adminIDs []int64,
	bot adapter.TelegramBotAdapter,
	states repository.AdminStateRepository,
	userUC usecase.UserUseCase,
	statsUC usecase.StatsUseCase,
	broadcastUC usecase.BroadcastUseCase,
	exportUC usecase.ExportUseCase,
	logger *zerolog.Logger,
) *AdminDispatcher {
	m := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		m[id] = struct{}{}
	}
	return &AdminDispatcher{
		adminIDs:    m,
		bot:         bot,
		states:      states,
		userUC:      userUC,
		statsUC:     statsUC,
		broadcastUC: broadcastUC,
		exportUC:    exportUC,
		log:         logger,
	}
}

func (d *AdminDispatcher) IsAdmin(tgID int64) bool {
	_, ok := d.adminIDs[tgID]
	return ok
}

// HandlePanel serves /admin. Non-admins get a denial and nothing else.
func (d *AdminDispatcher) HandlePanel(ctx context.Context, chatID, tgID int64) error {
	if !d.IsAdmin(tgID) {
		metrics.IncAdminCommand("panel", "denied")
		d.log.Warn().Err(domain.ErrAccessDenied).Int64("tg_id", tgID).Msg("admin panel denied")
		return d.bot.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: accessDeniedText})
	}
	metrics.IncAdminCommand("panel", "ok")
	return d.bot.SendMessage(ctx, adapter.SendMessageParams{
		ChatID:      chatID,
		Text:        panelText(),
		ReplyMarkup: panelKeyboard(),
	})
}

// HandleExport serves /export_users with the full user table as a CSV
// document.
func (d *AdminDispatcher) HandleExport(ctx context.Context, chatID, tgID int64) error {
	if !d.IsAdmin(tgID) {
		metrics.IncAdminCommand("export", "denied")
		d.log.Warn().Err(domain.ErrAccessDenied).Int64("tg_id", tgID).Msg("user export denied")
		return d.bot.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: accessDeniedText})
	}
	data, err := d.exportUC.ExportUsersCSV(ctx)
	if err != nil {
		metrics.IncAdminCommand("export", "error")
		return d.bot.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: "❌ Error membuat export. Silakan coba lagi."})
	}
	metrics.IncAdminCommand("export", "ok")
	return d.bot.SendDocument(ctx, adapter.DocumentParams{
		ChatID:   chatID,
		Filename: fmt.Sprintf("users_%s.csv", time.Now().Format("2006-01-02")),
		Data:     data,
		Caption:  "📋 Export data users",
	})
}

// MaybeHandleText intercepts free text from the admin who is mid-flow. It
// reports whether the message was consumed, so the caller knows to skip the
// normal analysis path. Text from anyone else, another admin included,
// passes through untouched.
func (d *AdminDispatcher) MaybeHandleText(ctx context.Context, chatID, tgID int64, text string) (bool, error) {
	if !d.IsAdmin(tgID) {
		return false, nil
	}
	st, err := d.states.Get(ctx, chatID)
	if err != nil {
		d.log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to load admin state")
		return false, nil
	}
	step := repository.StepIdle
	if st != nil {
		step = st.Step
	}
	if step != repository.StepAwaitingBroadcastText || st.AdminID != tgID {
		return false, nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return true, d.bot.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: "Teks broadcast tidak boleh kosong. Kirim ulang, atau batalkan."})
	}

	if err := d.states.Set(ctx, chatID, &repository.AdminState{
		Step:             repository.StepAwaitingBroadcastConfirm,
		AdminID:          tgID,
		PendingBroadcast: text,
	}); err != nil {
		return true, err
	}

	preview := text
	if r := []rune(preview); len(r) > 500 {
		preview = string(r[:500]) + "…"
	}
	return true, d.bot.SendMessage(ctx, adapter.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("📢 Pratinjau broadcast:\n\n%s\n\nKirim ke semua user?", preview),
		ReplyMarkup: [][]adapter.Button{
			{{Text: "✅ Kirim", Data: cbConfirmBroadcast}, {Text: "❌ Batal", Data: cbCancelBroadcast}},
		},
	})
}

// HandleCallback routes an inline keyboard press. Unknown tokens get the
// under-development notice instead of silence.
func (d *AdminDispatcher) HandleCallback(ctx context.Context, chatID int64, messageID int, tgID int64, data string) error {
	if !d.IsAdmin(tgID) {
		metrics.IncAdminCommand("callback", "denied")
		d.log.Warn().Err(domain.ErrAccessDenied).Int64("tg_id", tgID).Msg("admin callback denied")
		return d.bot.EditMessage(ctx, adapter.EditMessageParams{ChatID: chatID, MessageID: messageID, Text: accessDeniedShortText})
	}

	data = strings.TrimSpace(data)
	switch data {
	case cbAdminStats:
		return d.showStats(ctx, chatID, messageID)
	case cbAdminUsers:
		return d.showUserList(ctx, chatID, messageID)
	case cbAdminBroadcast:
		return d.startBroadcast(ctx, chatID, messageID, tgID)
	case cbAdminBack:
		return d.backToPanel(ctx, chatID, messageID)
	case cbConfirmBroadcast:
		return d.confirmBroadcast(ctx, chatID, messageID, tgID)
	case cbCancelBroadcast:
		return d.cancelBroadcast(ctx, chatID, messageID, tgID)
	}

	switch {
	case strings.HasPrefix(data, cbPrefixUserDetail):
		return d.showUserDetail(ctx, chatID, messageID, strings.TrimPrefix(data, cbPrefixUserDetail))
	case strings.HasPrefix(data, cbPrefixPremiumToggle):
		return d.togglePremium(ctx, chatID, messageID, strings.TrimPrefix(data, cbPrefixPremiumToggle))
	}

	return d.bot.EditMessage(ctx, adapter.EditMessageParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        notImplementedText,
		ReplyMarkup: backKeyboard(),
	})
}

func (d *AdminDispatcher) showStats(ctx context.Context, chatID int64, messageID int) error {
	s, err := d.statsUC.Aggregate(ctx)
	if err != nil {
		metrics.IncAdminCommand("stats", "error")
		d.log.Error().Err(err).Msg("failed to aggregate stats")
		return d.bot.EditMessage(ctx, adapter.EditMessageParams{ChatID: chatID, MessageID: messageID, Text: "❌ Error mengambil statistik.", ReplyMarkup: backKeyboard()})
	}
	metrics.IncAdminCommand("stats", "ok")
	text := fmt.Sprintf(`📊 Statistik Bot

👥 Total Users: %d
⭐ Premium Users: %d
🚀 Active Users (30 hari): %d

📨 Total Usage: %d
📅 Usage hari ini: %d
🗓 Usage bulan ini: %d`,
		s.TotalUsers, s.PremiumUsers, s.ActiveUsers30d,
		s.TotalUsage, s.UsageToday, s.UsageThisMonth)
	return d.bot.EditMessage(ctx, adapter.EditMessageParams{ChatID: chatID, MessageID: messageID, Text: text, ReplyMarkup: backKeyboard()})
}

func (d *AdminDispatcher) showUserList(ctx context.Context, chatID int64, messageID int) error {
	users, err := d.userUC.List(ctx, userListLimit)
	if err != nil {
		metrics.IncAdminCommand("users", "error")
		return d.bot.EditMessage(ctx, adapter.EditMessageParams{ChatID: chatID, MessageID: messageID, Text: "❌ Error mengambil daftar user.", ReplyMarkup: backKeyboard()})
	}
	metrics.IncAdminCommand("users", "ok")
	if len(users) == 0 {
		return d.bot.EditMessage(ctx, adapter.EditMessageParams{ChatID: chatID, MessageID: messageID, Text: "Belum ada user terdaftar.", ReplyMarkup: backKeyboard()})
	}

	rows := make([][]adapter.Button, 0, len(users)+1)
	for _, u := range users {
		label := u.DisplayName()
		if u.IsPremium {
			label = "⭐ " + label
		}
		rows = append(rows, []adapter.Button{{
			Text: fmt.Sprintf("%s (%d)", label, u.TelegramID),
			Data: cbPrefixUserDetail + strconv.FormatInt(u.TelegramID, 10),
		}})
	}
	rows = append(rows, backRow())
	return d.bot.EditMessage(ctx, adapter.EditMessageParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        fmt.Sprintf("👥 User terbaru (maks %d):", userListLimit),
		ReplyMarkup: rows,
	})
}

func (d *AdminDispatcher) showUserDetail(ctx context.Context, chatID int64, messageID int, rawID string) error {
	tgID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return d.bot.EditMessage(ctx, adapter.EditMessageParams{ChatID: chatID, MessageID: messageID, Text: notImplementedText, ReplyMarkup: backKeyboard()})
	}
	u, err := d.userUC.GetByTelegramID(ctx, tgID)
	if err != nil {
		text := "❌ Error mengambil data user."
		if errors.Is(err, domain.ErrNotFound) {
			text = "User tidak ditemukan."
		}
		return d.bot.EditMessage(ctx, adapter.EditMessageParams{ChatID: chatID, MessageID: messageID, Text: text, ReplyMarkup: backKeyboard()})
	}

	premium := "Tidak"
	toggleLabel := "⭐ Jadikan Premium"
	if u.IsPremium {
		premium = "Ya"
		toggleLabel = "🔻 Cabut Premium"
	}
	text := fmt.Sprintf(`👤 Detail User

Nama: %s
Username: @%s
Telegram ID: %d
Premium: %s
Usage: %d
Terdaftar: %s`,
		u.DisplayName(), u.Username, u.TelegramID, premium, u.UsageCount,
		u.CreatedAt.Format("2006-01-02 15:04"))

	return d.bot.EditMessage(ctx, adapter.EditMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		ReplyMarkup: [][]adapter.Button{
			{{Text: toggleLabel, Data: cbPrefixPremiumToggle + rawID}},
			{{Text: "⬅️ Back", Data: cbAdminUsers}},
		},
	})
}

func (d *AdminDispatcher) togglePremium(ctx context.Context, chatID int64, messageID int, rawID string) error {
	tgID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return d.bot.EditMessage(ctx, adapter.EditMessageParams{ChatID: chatID, MessageID: messageID, Text: notImplementedText, ReplyMarkup: backKeyboard()})
	}
	if _, err := d.userUC.TogglePremium(ctx, tgID); err != nil {
		metrics.IncAdminCommand("premium_toggle", "error")
		return d.bot.EditMessage(ctx, adapter.EditMessageParams{ChatID: chatID, MessageID: messageID, Text: "❌ Error mengubah status premium.", ReplyMarkup: backKeyboard()})
	}
	metrics.IncAdminCommand("premium_toggle", "ok")
	// Re-render the detail so the admin sees the new state immediately.
	return d.showUserDetail(ctx, chatID, messageID, rawID)
}

func (d *AdminDispatcher) startBroadcast(ctx context.Context, chatID int64, messageID int, tgID int64) error {
	if err := d.states.Set(ctx, chatID, &repository.AdminState{
		Step:    repository.StepAwaitingBroadcastText,
		AdminID: tgID,
	}); err != nil {
		return err
	}
	metrics.IncAdminCommand("broadcast_start", "ok")
	return d.bot.EditMessage(ctx, adapter.EditMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      "🔧 Broadcast\n\nKirim teks yang ingin di-broadcast ke semua user.",
		ReplyMarkup: [][]adapter.Button{
			{{Text: "❌ Batal", Data: cbCancelBroadcast}},
		},
	})
}

func (d *AdminDispatcher) confirmBroadcast(ctx context.Context, chatID int64, messageID int, tgID int64) error {
	st, err := d.states.Get(ctx, chatID)
	if err != nil {
		return err
	}
	if st == nil || st.Step != repository.StepAwaitingBroadcastConfirm || st.PendingBroadcast == "" || st.AdminID != tgID {
		// Stale confirm press (restart wiped the state) or another admin
		// pressing a confirm button they do not own.
		d.log.Warn().Int64("chat_id", chatID).Int64("tg_id", tgID).Err(domain.ErrNoPendingBroadcast).Msg("confirm without pending broadcast")
		return d.bot.EditMessage(ctx, adapter.EditMessageParams{
			ChatID:      chatID,
			MessageID:   messageID,
			Text:        "Tidak ada broadcast yang menunggu konfirmasi. Mulai lagi dari menu.",
			ReplyMarkup: backKeyboard(),
		})
	}

	message := st.PendingBroadcast
	// Back to idle before the fan-out: a repeat press must not double-send.
	if err := d.states.Clear(ctx, chatID); err != nil {
		return err
	}

	if err := d.bot.EditMessage(ctx, adapter.EditMessageParams{ChatID: chatID, MessageID: messageID, Text: "📤 Broadcast sedang dikirim..."}); err != nil {
		d.log.Warn().Err(err).Msg("failed to edit broadcast progress message")
	}

	report, err := d.broadcastUC.Broadcast(ctx, message)
	if err != nil {
		metrics.IncAdminCommand("broadcast", "error")
		return d.bot.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: "❌ Broadcast gagal dijalankan."})
	}
	metrics.IncAdminCommand("broadcast", "ok")
	return d.bot.SendMessage(ctx, adapter.SendMessageParams{
		ChatID: chatID,
		Text: fmt.Sprintf("✅ Broadcast selesai.\n\nTerkirim: %d\nGagal: %d\nTotal: %d",
			report.Success, report.Fail, report.Total),
	})
}

func (d *AdminDispatcher) cancelBroadcast(ctx context.Context, chatID int64, messageID int, tgID int64) error {
	st, err := d.states.Get(ctx, chatID)
	if err != nil {
		return err
	}
	// Only the initiating admin may discard the pending flow.
	if st != nil && st.AdminID == tgID {
		if err := d.states.Clear(ctx, chatID); err != nil {
			return err
		}
	}
	metrics.IncAdminCommand("broadcast_cancel", "ok")
	return d.backToPanel(ctx, chatID, messageID)
}

func (d *AdminDispatcher) backToPanel(ctx context.Context, chatID int64, messageID int) error {
	return d.bot.EditMessage(ctx, adapter.EditMessageParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        panelText(),
		ReplyMarkup: panelKeyboard(),
	})
}

func panelText() string {
	return "🛠️ Admin Panel\n\nPilih opsi di bawah:"
}

func panelKeyboard() [][]adapter.Button {
	return [][]adapter.Button{
		{{Text: "📊 Statistik Bot", Data: cbAdminStats}},
		{{Text: "👥 Manage Users", Data: cbAdminUsers}},
		{{Text: "🔧 Broadcast", Data: cbAdminBroadcast}},
	}
}

func backRow() []adapter.Button {
	return []adapter.Button{{Text: "⬅️ Back", Data: cbAdminBack}}
}

func backKeyboard() [][]adapter.Button {
	return [][]adapter.Button{backRow()}
}
