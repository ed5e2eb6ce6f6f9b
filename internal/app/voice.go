package app

import (
	"sync"

	"github.com/avolkov/peerpad/internal/core"
	"github.com/avolkov/peerpad/internal/domain"
)

// VoiceMemberDTO is a roster entry for the voice channel of a room.
type VoiceMemberDTO struct {
	ID       domain.UserID `json:"id"`
	Username string        `json:"username"`
}

// VoiceRoster tracks who is in the voice channel of which room. Membership
// here is deliberately independent of room membership: leaving the code
// room does not hang up the call, only leave-voice or disconnect does.
// The bySID reverse index makes disconnect reconciliation a lookup, not a
// scan over rooms.
type VoiceRoster struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]map[core.SessionID]string
	bySID map[core.SessionID]map[domain.RoomID]struct{}
}

func NewVoiceRoster() *VoiceRoster {
	return &VoiceRoster{
		rooms: make(map[domain.RoomID]map[core.SessionID]string),
		bySID: make(map[core.SessionID]map[domain.RoomID]struct{}),
	}
}

// Join inserts the entry and returns the peers that were already present,
// so the coordinator can trigger pairwise connection bootstraps.
func (v *VoiceRoster) Join(id domain.RoomID, sid core.SessionID, username string) []core.SessionID {
	v.mu.Lock()
	defer v.mu.Unlock()
	room, ok := v.rooms[id]
	if !ok {
		room = make(map[core.SessionID]string)
		v.rooms[id] = room
	}
	existing := make([]core.SessionID, 0, len(room))
	for peer := range room {
		if peer != sid {
			existing = append(existing, peer)
		}
	}
	room[sid] = username
	if _, ok := v.bySID[sid]; !ok {
		v.bySID[sid] = make(map[domain.RoomID]struct{})
	}
	v.bySID[sid][id] = struct{}{}
	return existing
}

func (v *VoiceRoster) Leave(id domain.RoomID, sid core.SessionID) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.leaveLocked(id, sid)
}

func (v *VoiceRoster) leaveLocked(id domain.RoomID, sid core.SessionID) bool {
	room, ok := v.rooms[id]
	if !ok {
		return false
	}
	if _, ok := room[sid]; !ok {
		return false
	}
	delete(room, sid)
	if len(room) == 0 {
		delete(v.rooms, id)
	}
	if rooms, ok := v.bySID[sid]; ok {
		delete(rooms, id)
		if len(rooms) == 0 {
			delete(v.bySID, sid)
		}
	}
	return true
}

// DropAll removes the connection from every voice channel it is present in
// and returns the affected rooms. This is the disconnect reconciliation.
func (v *VoiceRoster) DropAll(sid core.SessionID) []domain.RoomID {
	v.mu.Lock()
	defer v.mu.Unlock()
	rooms, ok := v.bySID[sid]
	if !ok {
		return nil
	}
	out := make([]domain.RoomID, 0, len(rooms))
	for id := range rooms {
		out = append(out, id)
	}
	for _, id := range out {
		v.leaveLocked(id, sid)
	}
	return out
}

func (v *VoiceRoster) Roster(id domain.RoomID) []VoiceMemberDTO {
	v.mu.RLock()
	defer v.mu.RUnlock()
	room := v.rooms[id]
	out := make([]VoiceMemberDTO, 0, len(room))
	for sid, name := range room {
		out = append(out, VoiceMemberDTO{ID: domain.UserID(sid), Username: name})
	}
	return out
}

func (v *VoiceRoster) Contains(id domain.RoomID, sid core.SessionID) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	room, ok := v.rooms[id]
	if !ok {
		return false
	}
	_, ok = room[sid]
	return ok
}
