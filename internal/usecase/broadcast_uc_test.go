//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"trenbolt-bot/internal/domain"
	"trenbolt-bot/internal/domain/model"
	"trenbolt-bot/internal/domain/ports/adapter"
	"trenbolt-bot/internal/usecase"
)

func seedUsers(t *testing.T, users *MockUserRepo, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		u, err := model.NewUser(id, "", "", "")
		if err != nil {
			t.Fatalf("NewUser(%d) failed: %v", id, err)
		}
		if _, err := users.Upsert(context.Background(), nil, u); err != nil {
			t.Fatalf("Upsert(%d) failed: %v", id, err)
		}
	}
}

func TestBroadcastUseCase_Broadcast(t *testing.T) {
	ctx := context.Background()

	t.Run("counts failures without aborting", func(t *testing.T) {
		users := NewMockUserRepo()
		seedUsers(t, users, 1, 2, 3, 4)

		bot := &MockTelegramBot{}
		var mu sync.Mutex
		attempted := map[int64]bool{}
		bot.SendMessageFunc = func(_ context.Context, p adapter.SendMessageParams) error {
			mu.Lock()
			defer mu.Unlock()
			attempted[p.ChatID] = true
			if p.ChatID == 2 || p.ChatID == 4 {
				return errors.New("bot was blocked by the user")
			}
			return nil
		}

		uc := usecase.NewBroadcastUseCase(users, bot, newTestLogger())
		report, err := uc.Broadcast(ctx, "hello everyone")
		if err != nil {
			t.Fatalf("Broadcast failed: %v", err)
		}

		if report.Total != 4 {
			t.Errorf("expected total 4, got %d", report.Total)
		}
		if report.Success != 2 {
			t.Errorf("expected 2 successes, got %d", report.Success)
		}
		if report.Fail != 2 {
			t.Errorf("expected 2 failures, got %d", report.Fail)
		}
		if len(attempted) != 4 {
			t.Errorf("expected all 4 users attempted, got %d", len(attempted))
		}
	})

	t.Run("rejects empty message", func(t *testing.T) {
		uc := usecase.NewBroadcastUseCase(NewMockUserRepo(), &MockTelegramBot{}, newTestLogger())
		if _, err := uc.Broadcast(ctx, "   "); !errors.Is(err, domain.ErrEmptyInput) {
			t.Errorf("expected ErrEmptyInput, got %v", err)
		}
	})

	t.Run("propagates list failure", func(t *testing.T) {
		users := NewMockUserRepo()
		users.ListFunc = func(context.Context, interface{}, int) ([]*model.User, error) {
			return nil, errors.New("db down")
		}
		uc := usecase.NewBroadcastUseCase(users, &MockTelegramBot{}, newTestLogger())
		if _, err := uc.Broadcast(ctx, "hello"); err == nil {
			t.Fatal("expected error when user listing fails")
		}
	})
}
