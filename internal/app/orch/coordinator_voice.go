package orch

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/avolkov/peerpad/internal/core"
	"github.com/avolkov/peerpad/internal/domain"
)

// JoinVoice puts the caller on the voice roster of its current room. The
// caller gets the roster back; the rest of the room learns about the new
// participant; and every peer already in voice gets a directed trigger to
// open a point-to-point link to the newcomer. That star of pairwise
// triggers is what bootstraps a full mesh without relaying any media here.
func (o *Coordinator) JoinVoice(sid core.SessionID) {
	roomID, room, ok := o.roomOf(sid)
	if !ok {
		return
	}
	user := o.Registry.GetOrCreateUser(sid)
	existing := o.Voice.Join(roomID, sid, user.Username)

	o.send(sid, voiceRosterEvent{Type: EvVoiceRoster, Participants: o.Voice.Roster(roomID)})

	res := room.BroadcastExcept(sid, marshal(voiceMemberEvent{Type: EvVoiceJoined, User: *user}))
	o.handleDropped(room, res)

	for _, peer := range existing {
		o.send(peer, voiceInitiateEvent{Type: EvVoiceInitiate, Peer: *user})
	}
	log.Info().Str("module", "orch").Str("room", string(roomID)).Str("sid", string(sid)).Int("peers", len(existing)).Msg("joined voice")
}

// LeaveVoice drops the caller's roster entry; room membership is untouched.
// The room id may be supplied explicitly because voice membership can
// outlive room membership.
func (o *Coordinator) LeaveVoice(sid core.SessionID, roomID domain.RoomID) {
	if roomID == "" {
		id, _, ok := o.Registry.RoomOf(sid)
		if !ok {
			return
		}
		roomID = id
	}
	if !o.Voice.Leave(roomID, sid) {
		return
	}
	o.broadcastVoiceLeft(roomID, sid)
}

func (o *Coordinator) broadcastVoiceLeft(roomID domain.RoomID, sid core.SessionID) {
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		// The room may already be gone; the roster entry outlives it
		// briefly and there is nobody left to notify.
		return
	}
	user := o.Registry.GetOrCreateUser(sid)
	res := room.BroadcastAll(marshal(voiceLeftEvent{
		Type:         EvVoiceLeft,
		User:         *user,
		Participants: o.Voice.Roster(roomID),
	}))
	o.handleDropped(room, res)
}

// RelaySignal forwards an opaque offer/answer/candidate blob to one live
// target, stamping the sender id. Payload contents are never inspected.
func (o *Coordinator) RelaySignal(sid core.SessionID, kind string, target core.SessionID, payload json.RawMessage) {
	if _, ok := o.Registry.GetSession(target); !ok {
		log.Debug().Str("module", "orch").Str("target", string(target)).Msg("signal relay to unknown target dropped")
		return
	}
	o.send(target, voiceSignalEvent{Type: kind, From: domain.UserID(sid), Payload: payload})
}
