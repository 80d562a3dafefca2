package ai

import (
	"context"
	"errors"

	"trenbolt-bot/internal/domain/ports/adapter"
)

var (
	_ adapter.TextAnalyzer = (*NoopAnalyzer)(nil)
	_ adapter.Transcriber  = (*NoopTranscriber)(nil)
)

// NoopAnalyzer stands in when no Gemini key is configured. Every reply
// carries the failure marker so callers fall back to the local summary.
type NoopAnalyzer struct{}

func (NoopAnalyzer) Analyze(context.Context, string, int64) string { return analysisFailureReply }
func (NoopAnalyzer) Enabled() bool                                 { return false }
func (NoopAnalyzer) Model() string                                 { return "" }

// NoopTranscriber stands in when no OpenAI key is configured.
type NoopTranscriber struct{}

func (NoopTranscriber) Transcribe(context.Context, string, []byte) (string, error) {
	return "", errors.New("transcription is not configured")
}
