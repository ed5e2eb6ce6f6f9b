package app

import "github.com/avolkov/peerpad/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	MarkSlow
	KickMember
	DropFrame
)

// Policy decides what to do with a member whose send buffer is full.
// Delivery is fire-and-forget; a slow recipient must never stall the rest
// of a fan-out set, so the only real choices are dropping or kicking.
type Policy interface {
	OnBackPressure(room core.RoomService, member core.SessionID) BackpressureAction
}

type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(room core.RoomService, member core.SessionID) BackpressureAction {
	return KickMember
}
