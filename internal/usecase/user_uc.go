// File: internal/usecase/user_uc.go
package usecase

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"trenbolt-bot/internal/domain/model"
	"trenbolt-bot/internal/domain/ports/repository"
	"trenbolt-bot/internal/infra/metrics"
)

type UserUseCase interface {
	// RegisterOrFetch upserts the user row and returns the stored state.
	// Calling it repeatedly with the same Telegram ID is idempotent.
	RegisterOrFetch(ctx context.Context, tgID int64, username, firstName, lastName string) (*model.User, error)

	GetByTelegramID(ctx context.Context, tgID int64) (*model.User, error)
	List(ctx context.Context, limit int) ([]*model.User, error)

	// TrackUsage appends a usage event and bumps the user counter in one
	// transaction, so the counter and the log never drift apart.
	TrackUsage(ctx context.Context, tgID int64, actionType string, details map[string]string) error

	SetPremium(ctx context.Context, tgID int64, premium bool) error

	// TogglePremium flips the flag and returns the new value.
	TogglePremium(ctx context.Context, tgID int64) (bool, error)
}

var _ UserUseCase = (*userUC)(nil)

type userUC struct {
	users repository.UserRepository
	usage repository.UsageRepository
	tx    repository.TransactionManager
	log   *zerolog.Logger
}

func NewUserUseCase(
	users repository.UserRepository,
	usage repository.UsageRepository,
	tx repository.TransactionManager,
	logger *zerolog.Logger,
) UserUseCase {
	return &userUC{users: users, usage: usage, tx: tx, log: logger}
}

func (uc *userUC) RegisterOrFetch(ctx context.Context, tgID int64, username, firstName, lastName string) (*model.User, error) {
	u, err := model.NewUser(tgID, username, firstName, lastName)
	if err != nil {
		return nil, err
	}
	stored, err := uc.users.Upsert(ctx, repository.NoTX, u)
	if err != nil {
		uc.log.Error().Err(err).Int64("tg_id", tgID).Msg("user upsert failed")
		return nil, err
	}
	// A fresh insert leaves created_at and updated_at identical; a conflict
	// refresh bumps only updated_at.
	if stored.CreatedAt.Equal(stored.UpdatedAt) {
		metrics.IncUsersRegistered()
		uc.log.Info().Int64("tg_id", tgID).Msg("new user registered")
	}
	return stored, nil
}

func (uc *userUC) GetByTelegramID(ctx context.Context, tgID int64) (*model.User, error) {
	return uc.users.FindByTelegramID(ctx, repository.NoTX, tgID)
}

func (uc *userUC) List(ctx context.Context, limit int) ([]*model.User, error) {
	return uc.users.List(ctx, repository.NoTX, limit)
}

func (uc *userUC) TrackUsage(ctx context.Context, tgID int64, actionType string, details map[string]string) error {
	ev, err := model.NewUsageEvent(tgID, actionType)
	if err != nil {
		return err
	}
	ev.Details = details
	return uc.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := uc.usage.Append(ctx, tx, ev); err != nil {
			return err
		}
		return uc.users.IncrementUsage(ctx, tx, tgID)
	})
}

func (uc *userUC) SetPremium(ctx context.Context, tgID int64, premium bool) error {
	return uc.users.SetPremium(ctx, repository.NoTX, tgID, premium)
}

func (uc *userUC) TogglePremium(ctx context.Context, tgID int64) (bool, error) {
	var next bool
	err := uc.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		u, err := uc.users.FindByTelegramID(ctx, tx, tgID)
		if err != nil {
			return err
		}
		next = !u.IsPremium
		return uc.users.SetPremium(ctx, tx, tgID, next)
	})
	if err != nil {
		return false, err
	}
	return next, nil
}
