package model

import (
	"strings"
	"time"

	"trenbolt-bot/internal/domain"
)

// User is a domain entity representing a Telegram user in our system.
// TelegramID is the transport-assigned identifier and the unique key;
// rows are never hard-deleted.
type User struct {
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
	IsPremium  bool
	UsageCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewUser(tgID int64, username, firstName, lastName string) (*User, error) {
	if tgID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &User{
		TelegramID: tgID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// DisplayName prefers the profile name over the username handle.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return "user"
}
