package adapter

import "context"

// Button is one inline keyboard button. Data carries the callback action
// token; URL makes the button open a link instead.
type Button struct {
	Text string
	Data string
	URL  string
}

// SendMessageParams describes an outbound message. When ReplyMarkup is set
// the message carries an inline keyboard.
type SendMessageParams struct {
	ChatID      int64
	Text        string
	ReplyMarkup [][]Button
}

// EditMessageParams rewrites a previously sent message in place, which is
// how the admin menu navigates without flooding the chat.
type EditMessageParams struct {
	ChatID      int64
	MessageID   int
	Text        string
	ReplyMarkup [][]Button
}

// DocumentParams sends a file attachment (e.g. the user CSV export).
type DocumentParams struct {
	ChatID   int64
	Filename string
	Data     []byte
	Caption  string
}

// TelegramBotAdapter is the narrow transport surface handlers write to.
type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, params SendMessageParams) error
	EditMessage(ctx context.Context, params EditMessageParams) error
	SendDocument(ctx context.Context, params DocumentParams) error
}
