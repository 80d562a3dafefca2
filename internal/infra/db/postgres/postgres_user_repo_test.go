//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"

	"trenbolt-bot/internal/domain"
	"trenbolt-bot/internal/domain/model"
)

func TestUserRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	repo := NewPostgresUserRepo(testPool)
	ctx := context.Background()

	t.Run("upsert is idempotent and refreshes identity", func(t *testing.T) {
		cleanup(t)

		u, err := model.NewUser(123456789, "trenbolt_user", "Tren", "Bolt")
		if err != nil {
			t.Fatalf("model.NewUser() failed: %v", err)
		}
		stored, err := repo.Upsert(ctx, nil, u)
		if err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
		if stored.UsageCount != 0 {
			t.Errorf("expected fresh usage count 0, got %d", stored.UsageCount)
		}

		// Second upsert with a changed username must not reset counters.
		if err := repo.IncrementUsage(ctx, nil, 123456789); err != nil {
			t.Fatalf("IncrementUsage failed: %v", err)
		}
		u.Username = "renamed_user"
		again, err := repo.Upsert(ctx, nil, u)
		if err != nil {
			t.Fatalf("second Upsert failed: %v", err)
		}
		if again.Username != "renamed_user" {
			t.Errorf("expected refreshed username, got %q", again.Username)
		}
		if again.UsageCount != 1 {
			t.Errorf("expected usage count 1 to survive upsert, got %d", again.UsageCount)
		}
		if !again.CreatedAt.Equal(stored.CreatedAt) {
			t.Errorf("created_at changed across upserts: %v vs %v", stored.CreatedAt, again.CreatedAt)
		}

		total, err := repo.CountUsers(ctx, nil)
		if err != nil {
			t.Fatalf("CountUsers failed: %v", err)
		}
		if total != 1 {
			t.Errorf("expected 1 user after repeated upserts, got %d", total)
		}
	})

	t.Run("find returns not found for unknown id", func(t *testing.T) {
		cleanup(t)

		_, err := repo.FindByTelegramID(ctx, nil, 404)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("premium toggle and counters", func(t *testing.T) {
		cleanup(t)

		u1, _ := model.NewUser(111, "user1", "", "")
		u2, _ := model.NewUser(222, "user2", "", "")
		if _, err := repo.Upsert(ctx, nil, u1); err != nil {
			t.Fatalf("Upsert user1 failed: %v", err)
		}
		if _, err := repo.Upsert(ctx, nil, u2); err != nil {
			t.Fatalf("Upsert user2 failed: %v", err)
		}

		if err := repo.SetPremium(ctx, nil, 222, true); err != nil {
			t.Fatalf("SetPremium failed: %v", err)
		}
		premium, err := repo.CountPremiumUsers(ctx, nil)
		if err != nil {
			t.Fatalf("CountPremiumUsers failed: %v", err)
		}
		if premium != 1 {
			t.Errorf("expected 1 premium user, got %d", premium)
		}

		if err := repo.SetPremium(ctx, nil, 999, true); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound for unknown user, got %v", err)
		}
	})

	t.Run("list is newest first and honors limit", func(t *testing.T) {
		cleanup(t)

		for _, id := range []int64{1, 2, 3} {
			u, _ := model.NewUser(id, "", "", "")
			if _, err := repo.Upsert(ctx, nil, u); err != nil {
				t.Fatalf("Upsert %d failed: %v", id, err)
			}
		}

		users, err := repo.List(ctx, nil, 2)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(users) != 2 {
			t.Fatalf("expected 2 users, got %d", len(users))
		}
		if users[0].CreatedAt.Before(users[1].CreatedAt) {
			t.Errorf("expected newest first ordering")
		}
	})
}
