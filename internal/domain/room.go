package domain

import "time"

type RoomID string

// Room is the configured part of a session. Membership, code buffers and
// view state are runtime concerns and live in the core aggregate.
type Room struct {
	ID        RoomID
	Language  Language
	CreatedAt time.Time
}
