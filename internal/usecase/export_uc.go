package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"

	"github.com/rs/zerolog"

	"trenbolt-bot/internal/domain/ports/repository"
)

// exportTimeLayout keeps timestamps spreadsheet-friendly.
const exportTimeLayout = "2006-01-02 15:04:05"

type ExportUseCase interface {
	// ExportUsersCSV renders every user as CSV, newest first.
	ExportUsersCSV(ctx context.Context) ([]byte, error)
}

var _ ExportUseCase = (*exportUC)(nil)

type exportUC struct {
	users repository.UserRepository
	log   *zerolog.Logger
}

func NewExportUseCase(users repository.UserRepository, logger *zerolog.Logger) ExportUseCase {
	return &exportUC{users: users, log: logger}
}

func (uc *exportUC) ExportUsersCSV(ctx context.Context) ([]byte, error) {
	all, err := uc.users.List(ctx, repository.NoTX, 0)
	if err != nil {
		uc.log.Error().Err(err).Msg("failed to list users for export")
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"User ID", "Username", "First Name", "Last Name", "Premium", "Usage Count", "Created At"}); err != nil {
		return nil, err
	}
	for _, u := range all {
		premium := "No"
		if u.IsPremium {
			premium = "Yes"
		}
		rec := []string{
			strconv.FormatInt(u.TelegramID, 10),
			u.Username,
			u.FirstName,
			u.LastName,
			premium,
			strconv.Itoa(u.UsageCount),
			u.CreatedAt.Format(exportTimeLayout),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
