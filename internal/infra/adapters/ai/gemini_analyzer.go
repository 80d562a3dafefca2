// File: internal/infra/adapters/ai/gemini_analyzer.go
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"trenbolt-bot/internal/domain/ports/adapter"
	"trenbolt-bot/internal/infra/metrics"
)

var _ adapter.TextAnalyzer = (*GeminiAnalyzer)(nil)

const analysisPrompt = `Analisis teks berikut dan berikan insights yang berguna:

"%s"

Berikan analisis dalam format:
1. Ringkasan singkat
2. Poin-poin penting
3. Rekomendasi tindakan (jika applicable)

Gunakan bahasa Indonesia yang mudah dipahami.`

const analysisFailureReply = adapter.AnalysisFailurePrefix +
	" Maaf, saya mengalami kesalahan dalam menganalisis teks ini. Silakan coba lagi dengan teks yang berbeda."

// GeminiAnalyzer talks to the Gemini API through the official SDK. The model
// is chosen once at construction by probing a preference-ordered candidate
// list; a fully failed probe leaves the analyzer disabled for its lifetime.
type GeminiAnalyzer struct {
	client *genai.Client
	model  string
	maxOut int
	log    *zerolog.Logger
}

func NewGeminiAnalyzer(ctx context.Context, apiKey string, candidates []string, maxOut int, log *zerolog.Logger) (*GeminiAnalyzer, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	g := &GeminiAnalyzer{client: c, maxOut: maxOut, log: log}
	g.model = g.probeModel(ctx, candidates)
	if g.model == "" {
		log.Warn().Strs("candidates", candidates).Msg("no usable gemini model, analyzer disabled")
	}
	return g, nil
}

// probeModel returns the first candidate the API recognizes, or "".
func (g *GeminiAnalyzer) probeModel(ctx context.Context, candidates []string) string {
	for _, name := range candidates {
		if _, err := g.client.Models.Get(ctx, name, nil); err != nil {
			g.log.Debug().Str("model", name).Err(err).Msg("gemini model probe failed")
			continue
		}
		g.log.Info().Str("model", name).Msg("gemini model selected")
		return name
	}
	return ""
}

func (g *GeminiAnalyzer) Enabled() bool { return g.model != "" }

func (g *GeminiAnalyzer) Model() string { return g.model }

// Analyze never returns an error; failures come back as a reply carrying the
// failure marker so the caller can substitute the local summary.
func (g *GeminiAnalyzer) Analyze(ctx context.Context, text string, callerID int64) string {
	if !g.Enabled() {
		return analysisFailureReply
	}

	start := time.Now()
	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: fmt.Sprintf(analysisPrompt, text)}},
	}}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		MaxOutputTokens: int32(g.maxOut),
	})
	latency := int(time.Since(start).Milliseconds())
	if err != nil {
		metrics.ObserveAICall(g.model, latency, false)
		g.log.Error().Err(err).Int64("tg_id", callerID).Msg("gemini analysis failed")
		return analysisFailureReply
	}

	reply := ""
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil && len(resp.Candidates[0].Content.Parts) > 0 {
		reply = resp.Candidates[0].Content.Parts[0].Text
	}
	if reply == "" {
		metrics.ObserveAICall(g.model, latency, false)
		g.log.Warn().Int64("tg_id", callerID).Msg("gemini returned empty candidates")
		return analysisFailureReply
	}
	metrics.ObserveAICall(g.model, latency, true)
	return reply
}
