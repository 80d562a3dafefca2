package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"trenbolt-bot/internal/domain/ports/repository"
)

var _ repository.AdminStateRepository = (*AdminStateRepo)(nil)

// AdminStateRepo keeps the admin console conversational state in Redis so a
// restart does not strand an admin mid-broadcast.
type AdminStateRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewAdminStateRepo(client RedisClient, ttl time.Duration) *AdminStateRepo {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &AdminStateRepo{client: client, ttl: ttl}
}

func (s *AdminStateRepo) stateKey(chatID int64) string {
	return fmt.Sprintf("admin_state:%d", chatID)
}

func (s *AdminStateRepo) Set(ctx context.Context, chatID int64, state *repository.AdminState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.stateKey(chatID), data, s.ttl)
}

// Get returns (nil, nil) when no state is stored; absence is not an error.
func (s *AdminStateRepo) Get(ctx context.Context, chatID int64) (*repository.AdminState, error) {
	data, err := s.client.Get(ctx, s.stateKey(chatID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var state repository.AdminState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *AdminStateRepo) Clear(ctx context.Context, chatID int64) error {
	return s.client.Del(ctx, s.stateKey(chatID))
}
