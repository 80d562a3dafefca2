package application

import (
	"context"
	"fmt"

	"trenbolt-bot/internal/domain/model"
	"trenbolt-bot/internal/usecase"
)

// BotFacade composes usecases into high-level bot replies. Methods return
// strings so the Telegram adapter just forwards them to the chat.
type BotFacade struct {
	UserUC       usecase.UserUseCase
	AnalysisUC   usecase.AnalysisUseCase
	TranscribeUC usecase.TranscribeUseCase
}

func NewBotFacade(
	userUC usecase.UserUseCase,
	analysisUC usecase.AnalysisUseCase,
	transcribeUC usecase.TranscribeUseCase,
) *BotFacade {
	return &BotFacade{
		UserUC:       userUC,
		AnalysisUC:   analysisUC,
		TranscribeUC: transcribeUC,
	}
}

// HandleStart registers or refreshes the user and returns the welcome text.
func (b *BotFacade) HandleStart(ctx context.Context, tgID int64, username, firstName, lastName string) (string, error) {
	u, err := b.UserUC.RegisterOrFetch(ctx, tgID, username, firstName, lastName)
	if err != nil {
		return "", fmt.Errorf("register/fetch user: %w", err)
	}
	// Best-effort: the welcome reply must not depend on the usage log.
	_ = b.UserUC.TrackUsage(ctx, tgID, model.ActionStart, nil)
	return fmt.Sprintf(`🤖 Halo %s! Selamat datang di Trenbolt-Bot!

Saya adalah asisten AI yang dapat membantu Anda:
• Menganalisis tren dan konten
• Memproses audio menjadi teks
• Memberikan insights berdasarkan data terkini

🔧 Fitur yang tersedia:
/help - Menampilkan bantuan
/premium - Info fitur premium

Coba kirim saya pesan teks atau audio!`, u.DisplayName()), nil
}

func (b *BotFacade) HandleHelp(ctx context.Context) string {
	return `📖 Bantuan Trenbolt-Bot

Perintah yang tersedia:
/start - Memulai bot
/help - Menampilkan bantuan ini
/premium - Info fitur premium

Cara menggunakan:
1. Kirim teks langsung untuk dianalisis
2. Kirim pesan suara untuk dikonversi ke teks
3. Gunakan fitur premium untuk analisis mendalam`
}

func (b *BotFacade) HandlePremiumInfo(ctx context.Context) string {
	return `🌟 Fitur Premium Trenbolt-Bot

Fitur yang didapat:
✅ Analisis tren yang lebih mendalam
✅ Transkripsi audio tanpa batas
✅ Akses ke model AI terbaru
✅ Prioritas pemrosesan
✅ Support 24/7

Harga:
• Bulanan: Rp 50.000/bulan
• Tahunan: Rp 500.000/tahun

Cara berlangganan:
Kirim permintaan ke @admin untuk info lebih lanjut.

💎 Upgrade sekarang dan tingkatkan produktivitas Anda!`
}

// HandleText runs the AI analysis (or its local fallback) on free text.
func (b *BotFacade) HandleText(ctx context.Context, tgID int64, text string) (string, error) {
	analysis, err := b.AnalysisUC.AnalyzeText(ctx, tgID, text)
	if err != nil {
		return "", err
	}
	preview := []rune(text)
	if len(preview) > 100 {
		preview = preview[:100]
	}
	return fmt.Sprintf(`📊 Hasil Analisis:

Input: %s

Analisis:
%s

💡 Tips: Gunakan fitur premium untuk analisis yang lebih mendalam!`, string(preview), analysis), nil
}

// HandleVoice transcribes a downloaded voice note.
func (b *BotFacade) HandleVoice(ctx context.Context, tgID int64, filename string, data []byte) (string, error) {
	return b.handleTranscription(ctx, tgID, filename, data, model.ActionVoice)
}

// HandleAudio transcribes a downloaded audio file.
func (b *BotFacade) HandleAudio(ctx context.Context, tgID int64, filename string, data []byte) (string, error) {
	return b.handleTranscription(ctx, tgID, filename, data, model.ActionAudio)
}

func (b *BotFacade) handleTranscription(ctx context.Context, tgID int64, filename string, data []byte, actionType string) (string, error) {
	text, err := b.TranscribeUC.Transcribe(ctx, tgID, filename, data, actionType)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`🎤 Hasil Transkripsi:

%s

💡 Tips: Anda bisa menganalisis teks ini dengan mengirimnya sebagai pesan teks biasa.`, text), nil
}
