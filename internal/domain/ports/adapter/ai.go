package adapter

import (
	"context"
	"strings"
)

// AnalysisFailurePrefix is the leading marker on every degraded reply from
// an analyzer. Callers pattern-match on it to decide whether to fall back
// to the local summary.
const AnalysisFailurePrefix = "❌"

// IsAnalysisFailure reports whether a reply carries the failure marker.
func IsAnalysisFailure(reply string) bool {
	return strings.HasPrefix(strings.TrimSpace(reply), AnalysisFailurePrefix)
}

// TextAnalyzer wraps the generative-AI backend.
//
// Analyze never returns an error: any backend failure is converted into a
// reply starting with AnalysisFailurePrefix. Enabled and Model expose the
// outcome of the construction-time model probe; once the probe fails the
// instance stays disabled for its lifetime.
type TextAnalyzer interface {
	Analyze(ctx context.Context, text string, callerID int64) string
	Enabled() bool
	Model() string
}

// Transcriber converts a voice or audio note into text. Unlike Analyze,
// errors propagate so the handler can reply with an explicit
// "could not transcribe" message.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, data []byte) (string, error)
}
