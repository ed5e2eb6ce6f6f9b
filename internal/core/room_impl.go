package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/avolkov/peerpad/internal/domain"
)

// roomImpl is a threadsafe in-memory room. One mutex serializes every
// mutation for the room, so edits are applied in arrival order and no two
// rooms ever contend. It never closes adapter-owned resources.
type roomImpl struct {
	meta *domain.Room

	mu      sync.RWMutex
	host    SessionID
	members map[SessionID]MemberSession
	buffers map[SessionID]string
	viewing map[SessionID]SessionID
}

func NewRoomService(meta *domain.Room, host SessionID) RoomService {
	return &roomImpl{
		meta:    meta,
		host:    host,
		members: make(map[SessionID]MemberSession),
		buffers: make(map[SessionID]string),
		viewing: make(map[SessionID]SessionID),
	}
}

func (r *roomImpl) Meta() *domain.Room { return r.meta }

func (r *roomImpl) Language() domain.Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.meta.Language
}

func (r *roomImpl) SetLanguage(by SessionID, lang domain.Language) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if by != r.host {
		return domain.ErrNotHost
	}
	r.meta.Language = lang
	return nil
}

func (r *roomImpl) Host() SessionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.host
}

func (r *roomImpl) IsHost(sid SessionID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sid == r.host
}

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *roomImpl) MembersSnapshot() []MemberDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.membersLocked()
}

func (r *roomImpl) membersLocked() []MemberDTO {
	out := make([]MemberDTO, 0, len(r.members))
	for sid, ms := range r.members {
		u := ms.Meta()
		out = append(out, MemberDTO{ID: u.ID, Username: u.Username, IsHost: sid == r.host})
	}
	return out
}

func (r *roomImpl) Join(sid SessionID, ms MemberSession) RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[sid] = ms
	if _, ok := r.buffers[sid]; !ok {
		r.buffers[sid] = r.meta.Language.DefaultCode()
	}
	r.viewing[sid] = sid
	log.Info().Str("module", "core.room").Str("room", string(r.meta.ID)).Str("sid", string(sid)).Msg("member added")
	return RoomSnapshot{
		Room:         r.meta.ID,
		Language:     r.meta.Language,
		Code:         r.buffers[sid],
		Participants: r.membersLocked(),
		IsHost:       sid == r.host,
		Viewing:      sid,
	}
}

func (r *roomImpl) Leave(sid SessionID) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[sid]; !ok {
		return len(r.members), false
	}
	delete(r.members, sid)
	delete(r.viewing, sid)
	// The buffer stays: the host may still want to inspect it. It dies
	// with the room.
	log.Info().Str("module", "core.room").Str("room", string(r.meta.ID)).Str("sid", string(sid)).Msg("member removed")
	return len(r.members), true
}

func (r *roomImpl) Buffer(sid SessionID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	code, ok := r.buffers[sid]
	return code, ok
}

func (r *roomImpl) ViewOf(sid SessionID) (SessionID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.viewing[sid]
	return v, ok
}

func (r *roomImpl) ApplyEdit(caller, target SessionID, code string) ([]SessionID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[caller]; !ok {
		return nil, domain.ErrNotMember
	}
	if _, ok := r.buffers[target]; !ok {
		return nil, domain.ErrNoSuchTarget
	}
	if !CanEdit(r.host, caller, target, r.viewing[caller]) {
		return nil, domain.ErrNotViewing
	}
	r.buffers[target] = code
	viewers := make([]SessionID, 0, len(r.viewing))
	for sid, v := range r.viewing {
		if v == target {
			viewers = append(viewers, sid)
		}
	}
	return viewers, nil
}

func (r *roomImpl) SetView(caller, target SessionID) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[caller]; !ok {
		return "", domain.ErrNotMember
	}
	code, ok := r.buffers[target]
	if !ok {
		return "", domain.ErrNoSuchTarget
	}
	r.viewing[caller] = target
	return code, nil
}

func (r *roomImpl) ResetViewersOf(gone SessionID) []SessionID {
	r.mu.Lock()
	defer r.mu.Unlock()
	var reset []SessionID
	for sid, v := range r.viewing {
		if v == gone && sid != gone {
			r.viewing[sid] = sid
			reset = append(reset, sid)
		}
	}
	return reset
}

func (r *roomImpl) SendToSet(sids []SessionID, data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for _, sid := range sids {
		ms, ok := r.members[sid]
		if !ok {
			continue
		}
		if err := ms.Signal().TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, sid)
			continue
		}
		res.SentTo++
	}
	return res
}

func (r *roomImpl) BroadcastExcept(from SessionID, data Frame) PublishResult {
	return r.broadcast(&from, data)
}

func (r *roomImpl) BroadcastAll(data Frame) PublishResult {
	return r.broadcast(nil, data)
}

func (r *roomImpl) broadcast(skip *SessionID, data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for sid, ms := range r.members {
		if skip != nil && sid == *skip {
			continue
		}
		if err := ms.Signal().TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, sid)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.meta.ID)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}
