package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/avolkov/peerpad/internal/core"
	"github.com/avolkov/peerpad/internal/domain"
)

// Join implements create-or-join. An unknown room id requires a language
// (the creator becomes host); a known room ignores the supplied language.
// The joiner gets a room-state snapshot, everyone else a refreshed roster.
func (o *Coordinator) Join(sid core.SessionID, roomID domain.RoomID, language, username string) error {
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return domain.ErrNotMember
	}
	if username != "" {
		if err := o.Registry.UpdateUsername(sid, username); err != nil {
			return err
		}
	}

	// A connection belongs to exactly one room at a time. Re-joining the
	// room it is already in (refresh, reconnect race) must not pass
	// through Leave: for a solo participant that would empty and delete
	// the room out from under the join.
	rejoin := false
	if cur, _, ok := o.roomOf(sid); ok {
		if cur == roomID {
			rejoin = true
		} else {
			o.Leave(sid)
		}
	}

	room, ok := o.Rooms.Get(roomID)
	if !ok {
		if language == "" {
			return domain.ErrRoomNotFound
		}
		lang, err := domain.ParseLanguage(language)
		if err != nil {
			return err
		}
		room = o.Rooms.Create(roomID, lang, sid)
		log.Info().Str("module", "orch").Str("room", string(roomID)).Str("host", string(sid)).Msg("room created")
	}

	snap := room.Join(sid, sess)
	o.Registry.UpdateRoom(sid, roomID)

	o.send(sid, roomStateEvent{Type: EvRoomState, RoomSnapshot: snap})

	user := o.Registry.GetOrCreateUser(sid)
	res := room.BroadcastExcept(sid, marshal(rosterEvent{
		Type:         EvUserJoined,
		User:         *user,
		Participants: snap.Participants,
	}))
	o.handleDropped(room, res)

	if !rejoin {
		o.Stats.UserJoined()
		o.PushStats()
	}
	return nil
}

// Leave removes the caller from its current room. A no-op for connections
// that are not members of anything. The last member out deletes the room
// with all its buffers and view state.
func (o *Coordinator) Leave(sid core.SessionID) {
	roomID, room, ok := o.roomOf(sid)
	if !ok {
		return
	}
	remaining, removed := room.Leave(sid)
	o.Registry.ClearRoom(sid)
	if !removed {
		return
	}

	if remaining == 0 {
		o.Rooms.Remove(roomID)
		log.Info().Str("module", "orch").Str("room", string(roomID)).Msg("room empty, deleted")
	} else {
		user := o.Registry.GetOrCreateUser(sid)
		res := room.BroadcastAll(marshal(rosterEvent{
			Type:         EvUserLeft,
			User:         *user,
			Participants: room.MembersSnapshot(),
		}))
		o.handleDropped(room, res)
	}

	o.Stats.UserLeft()
	o.PushStats()
}

// End is host-only: notify everyone, forcibly detach them, delete the room.
// The sole transition that ends other participants' sessions.
func (o *Coordinator) End(sid core.SessionID) {
	roomID, room, ok := o.roomOf(sid)
	if !ok {
		return
	}
	if !room.IsHost(sid) {
		log.Debug().Str("module", "orch").Str("sid", string(sid)).Msg("end-room from non-host dropped")
		return
	}

	room.BroadcastAll(marshal(roomEndedEvent{Type: EvRoomEnded, Message: "The host has ended the room"}))

	for _, m := range room.MembersSnapshot() {
		member := core.SessionID(m.ID)
		room.Leave(member)
		o.Registry.ClearRoom(member)
		o.Stats.UserLeft()
	}
	o.Rooms.Remove(roomID)
	o.PushStats()
	log.Info().Str("module", "orch").Str("room", string(roomID)).Msg("room ended by host")
}

// ChangeLanguage is host-only and touches no buffer.
func (o *Coordinator) ChangeLanguage(sid core.SessionID, language string) {
	_, room, ok := o.roomOf(sid)
	if !ok {
		return
	}
	lang, err := domain.ParseLanguage(language)
	if err != nil {
		log.Debug().Str("module", "orch").Str("language", language).Msg("change-language dropped")
		return
	}
	if err := room.SetLanguage(sid, lang); err != nil {
		log.Debug().Str("module", "orch").Str("sid", string(sid)).Msg("change-language from non-host dropped")
		return
	}
	res := room.BroadcastAll(marshal(languageChangedEvent{Type: EvLanguageChanged, Language: lang}))
	o.handleDropped(room, res)
}

// Chat relays a message to all other members. Sender identity is resolved
// from stored state, never taken from the payload.
func (o *Coordinator) Chat(sid core.SessionID, message string) {
	_, room, ok := o.roomOf(sid)
	if !ok {
		return
	}
	user := o.Registry.GetOrCreateUser(sid)
	res := room.BroadcastExcept(sid, marshal(chatEvent{
		Type:     EvReceiveMessage,
		Message:  message,
		Sender:   user.ID,
		Username: user.Username,
	}))
	o.handleDropped(room, res)
}
