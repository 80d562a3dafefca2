// File: internal/usecase/analysis_uc.go
package usecase

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"trenbolt-bot/internal/domain"
	"trenbolt-bot/internal/domain/model"
	"trenbolt-bot/internal/domain/ports/adapter"
	"trenbolt-bot/internal/infra/metrics"
)

type AnalysisUseCase interface {
	// AnalyzeText returns the AI analysis for the text, or the local
	// statistical summary when the AI backend is disabled or failing.
	// The returned reply never carries the failure marker.
	AnalyzeText(ctx context.Context, tgID int64, text string) (string, error)
}

var _ AnalysisUseCase = (*analysisUC)(nil)

type analysisUC struct {
	analyzer adapter.TextAnalyzer
	users    UserUseCase
	log      *zerolog.Logger
}

func NewAnalysisUseCase(
	analyzer adapter.TextAnalyzer,
	users UserUseCase,
	logger *zerolog.Logger,
) AnalysisUseCase {
	return &analysisUC{analyzer: analyzer, users: users, log: logger}
}

func (uc *analysisUC) AnalyzeText(ctx context.Context, tgID int64, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.ErrEmptyInput
	}

	reply := ""
	if uc.analyzer.Enabled() {
		reply = uc.analyzer.Analyze(ctx, text, tgID)
	}
	if reply == "" || adapter.IsAnalysisFailure(reply) {
		reply = localTextSummary(text)
		metrics.IncAIFallbackServed()
	}

	// Usage tracking is best-effort: a logging hiccup must not cost the
	// user their reply.
	details := map[string]string{"chars": strconv.Itoa(len(text))}
	if err := uc.users.TrackUsage(ctx, tgID, model.ActionTextAnalysis, details); err != nil {
		uc.log.Warn().Err(err).Int64("tg_id", tgID).Msg("failed to track analysis usage")
	}
	return reply, nil
}
