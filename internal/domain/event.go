package domain

import "time"

// EventKind names a catalog mutation recorded in the moderation log.
type EventKind string

const (
	EventCreated   EventKind = "created"
	EventUpdated   EventKind = "updated"
	EventHidden    EventKind = "hidden"
	EventRestored  EventKind = "restored"
	EventPurged    EventKind = "purged"
	EventReordered EventKind = "reordered"
)

// ModerationEvent is one entry of the moderation log.
type ModerationEvent struct {
	ID      string    `json:"id"`
	Kind    EventKind `json:"kind"`
	CardID  uint      `json:"card_id,omitempty"`
	BatchID string    `json:"batch_id,omitempty"`
	Detail  string    `json:"detail,omitempty"`
	At      time.Time `json:"at"`
}
