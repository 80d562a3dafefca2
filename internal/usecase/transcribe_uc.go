package usecase

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"trenbolt-bot/internal/domain"
	"trenbolt-bot/internal/domain/ports/adapter"
)

type TranscribeUseCase interface {
	// Transcribe converts a downloaded voice or audio note into text.
	// actionType distinguishes voice notes from audio files in the usage log.
	Transcribe(ctx context.Context, tgID int64, filename string, data []byte, actionType string) (string, error)
}

var _ TranscribeUseCase = (*transcribeUC)(nil)

type transcribeUC struct {
	transcriber adapter.Transcriber
	users       UserUseCase
	log         *zerolog.Logger
}

func NewTranscribeUseCase(
	transcriber adapter.Transcriber,
	users UserUseCase,
	logger *zerolog.Logger,
) TranscribeUseCase {
	return &transcribeUC{transcriber: transcriber, users: users, log: logger}
}

func (uc *transcribeUC) Transcribe(ctx context.Context, tgID int64, filename string, data []byte, actionType string) (string, error) {
	if len(data) == 0 {
		return "", domain.ErrEmptyInput
	}
	text, err := uc.transcriber.Transcribe(ctx, filename, data)
	if err != nil {
		return "", err
	}

	details := map[string]string{"bytes": strconv.Itoa(len(data))}
	if err := uc.users.TrackUsage(ctx, tgID, actionType, details); err != nil {
		uc.log.Warn().Err(err).Int64("tg_id", tgID).Msg("failed to track transcription usage")
	}
	return text, nil
}
