package domain

import "errors"

// Coordinator error taxonomy. ErrRoomNotFound is the only one surfaced to
// the caller; the rest make a handler fail closed and are at most logged.
var (
	ErrRoomNotFound = errors.New("room not found")
	ErrNotHost      = errors.New("caller is not the host")
	ErrNotViewing   = errors.New("caller is not viewing the target buffer")
	ErrNoSuchTarget = errors.New("no such participant or buffer")
	ErrNotMember    = errors.New("caller is not a member of the room")
)
