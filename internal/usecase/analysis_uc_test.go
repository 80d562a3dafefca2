//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"trenbolt-bot/internal/domain"
	"trenbolt-bot/internal/domain/model"
	"trenbolt-bot/internal/domain/ports/adapter"
	"trenbolt-bot/internal/usecase"
)

func newAnalysisUC(analyzer adapter.TextAnalyzer) (usecase.AnalysisUseCase, *MockUserRepo, *MockUsageRepo) {
	userUC, users, usage := newUserUC()
	uc := usecase.NewAnalysisUseCase(analyzer, userUC, newTestLogger())
	return uc, users, usage
}

func TestAnalysisUseCase_AnalyzeText(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the AI reply when the backend is healthy", func(t *testing.T) {
		analyzer := &MockAnalyzer{EnabledVal: true, ModelVal: "gemini-2.0-flash"}
		uc, _, usage := newAnalysisUC(analyzer)

		reply, err := uc.AnalyzeText(ctx, 42, "some trend to analyze")
		if err != nil {
			t.Fatalf("AnalyzeText failed: %v", err)
		}
		if reply != "analysis of: some trend to analyze" {
			t.Errorf("unexpected reply: %q", reply)
		}
		if len(usage.Events) != 1 {
			t.Errorf("expected 1 usage event, got %d", len(usage.Events))
		}
	})

	t.Run("serves the local summary when the analyzer is disabled", func(t *testing.T) {
		analyzer := &MockAnalyzer{EnabledVal: false}
		uc, _, _ := newAnalysisUC(analyzer)

		reply, err := uc.AnalyzeText(ctx, 42, "kata satu dua tiga")
		if err != nil {
			t.Fatalf("AnalyzeText failed: %v", err)
		}
		if strings.Contains(reply, adapter.AnalysisFailurePrefix) {
			t.Errorf("fallback reply must not carry the failure marker: %q", reply)
		}
		if !strings.Contains(reply, "Jumlah kata: 4") {
			t.Errorf("expected word count in fallback, got %q", reply)
		}
		if len(analyzer.Calls) != 0 {
			t.Errorf("disabled analyzer must not be called, got %d calls", len(analyzer.Calls))
		}
	})

	t.Run("falls back when the AI reply carries the failure marker", func(t *testing.T) {
		analyzer := &MockAnalyzer{EnabledVal: true}
		analyzer.AnalyzeFunc = func(context.Context, string, int64) string {
			return adapter.AnalysisFailurePrefix + " backend exploded"
		}
		uc, _, usage := newAnalysisUC(analyzer)

		reply, err := uc.AnalyzeText(ctx, 42, "anything at all")
		if err != nil {
			t.Fatalf("AnalyzeText failed: %v", err)
		}
		if strings.Contains(reply, adapter.AnalysisFailurePrefix) {
			t.Errorf("expected local summary, got failure reply: %q", reply)
		}
		// Degraded replies are still usage.
		if len(usage.Events) != 1 {
			t.Errorf("expected usage tracked for fallback reply, got %d events", len(usage.Events))
		}
	})

	t.Run("rejects empty input", func(t *testing.T) {
		uc, _, _ := newAnalysisUC(&MockAnalyzer{EnabledVal: true})
		if _, err := uc.AnalyzeText(ctx, 42, "  \n "); !errors.Is(err, domain.ErrEmptyInput) {
			t.Errorf("expected ErrEmptyInput, got %v", err)
		}
	})

	t.Run("tracking failure does not cost the user the reply", func(t *testing.T) {
		analyzer := &MockAnalyzer{EnabledVal: true}
		uc, _, usage := newAnalysisUC(analyzer)
		usage.AppendFunc = func(context.Context, interface{}, *model.UsageEvent) error {
			return errors.New("disk full")
		}

		reply, err := uc.AnalyzeText(ctx, 42, "still works")
		if err != nil {
			t.Fatalf("AnalyzeText failed: %v", err)
		}
		if reply == "" {
			t.Error("expected a reply despite tracking failure")
		}
	})
}
