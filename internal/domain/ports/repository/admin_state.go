package repository

import "context"

// AdminStep enumerates the broadcast flow states. The tagged struct replaces
// loose flag/string pairs so stale flags cannot leak across conversations.
type AdminStep string

const (
	StepIdle                     AdminStep = "idle"
	StepAwaitingBroadcastText    AdminStep = "awaiting_broadcast_text"
	StepAwaitingBroadcastConfirm AdminStep = "awaiting_broadcast_confirm"
)

// AdminState is the per-conversation session state of the admin console.
// AdminID pins the flow to the admin who opened it, so two admins sharing
// a group chat cannot capture or confirm each other's broadcast. It is
// transient by design: losing it on restart only resets an operator
// convenience flow.
type AdminState struct {
	Step             AdminStep `json:"step"`
	AdminID          int64     `json:"admin_id,omitempty"`
	PendingBroadcast string    `json:"pending_broadcast,omitempty"`
}

// AdminStateRepository stores AdminState keyed by chat ID.
// Get returns (nil, nil) when no state exists, which callers treat as idle.
type AdminStateRepository interface {
	Get(ctx context.Context, chatID int64) (*AdminState, error)
	Set(ctx context.Context, chatID int64, state *AdminState) error
	Clear(ctx context.Context, chatID int64) error
}
