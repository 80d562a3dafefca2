package model

import (
	"time"

	"trenbolt-bot/internal/domain"
)

// UsageEvent is one append-only log row tied to a user action.
// It references the user by Telegram ID; it does not own the user row.
type UsageEvent struct {
	TelegramID int64
	ActionType string
	Timestamp  time.Time
	Details    map[string]string
}

// Well-known action types. Free-form tags are allowed too.
const (
	ActionTextAnalysis = "text_analysis"
	ActionVoice        = "voice"
	ActionAudio        = "audio"
	ActionStart        = "start"
)

func NewUsageEvent(tgID int64, actionType string) (*UsageEvent, error) {
	if tgID <= 0 || actionType == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &UsageEvent{
		TelegramID: tgID,
		ActionType: actionType,
		Timestamp:  time.Now(),
	}, nil
}
