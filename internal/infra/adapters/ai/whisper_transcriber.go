package ai

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/rs/zerolog"

	"trenbolt-bot/internal/domain/ports/adapter"
	"trenbolt-bot/internal/infra/metrics"
)

var _ adapter.Transcriber = (*WhisperTranscriber)(nil)

// WhisperTranscriber sends voice notes to the OpenAI Whisper endpoint.
type WhisperTranscriber struct {
	client openai.Client
	log    *zerolog.Logger
}

func NewWhisperTranscriber(apiKey string, log *zerolog.Logger) (*WhisperTranscriber, error) {
	if apiKey == "" {
		return nil, errors.New("whisper: empty api key")
	}
	return &WhisperTranscriber{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		log:    log,
	}, nil
}

func (w *WhisperTranscriber) Transcribe(ctx context.Context, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("whisper: empty audio payload")
	}
	resp, err := w.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: openai.AudioModelWhisper1,
		File:  openai.File(bytes.NewReader(data), filename, "audio/ogg"),
	})
	if err != nil {
		metrics.IncTranscription(false)
		w.log.Error().Err(err).Str("file", filename).Msg("whisper transcription failed")
		return "", err
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		metrics.IncTranscription(false)
		return "", errors.New("whisper: empty transcription")
	}
	metrics.IncTranscription(true)
	return text, nil
}
