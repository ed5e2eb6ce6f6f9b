// Package orch is the session coordinator: it validates requests against
// the stored room state, mutates the room store and voice roster, and
// decides which connections receive each resulting event. Nothing else
// writes that state.
package orch

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/avolkov/peerpad/internal/app"
	"github.com/avolkov/peerpad/internal/core"
	"github.com/avolkov/peerpad/internal/domain"
)

type Coordinator struct {
	Registry *app.Registry
	Rooms    core.RoomManager
	Voice    *app.VoiceRoster
	Stats    *app.Stats
	Policy   app.Policy
}

func New(reg *app.Registry, rooms core.RoomManager) *Coordinator {
	return &Coordinator{
		Registry: reg,
		Rooms:    rooms,
		Voice:    app.NewVoiceRoster(),
		Stats:    app.NewStats(),
		Policy:   app.SimplePolicy{},
	}
}

// roomOf resolves the caller's current room; (nil, false) means the request
// references a session that no longer exists and must be dropped silently.
func (o *Coordinator) roomOf(sid core.SessionID) (domain.RoomID, core.RoomService, bool) {
	id, _, ok := o.Registry.RoomOf(sid)
	if !ok {
		return "", nil, false
	}
	room, ok := o.Rooms.Get(id)
	if !ok {
		return "", nil, false
	}
	return id, room, true
}

func marshal(v any) core.Frame {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("event marshal")
		return nil
	}
	return b
}

// send delivers one event to one connection, room member or not.
func (o *Coordinator) send(sid core.SessionID, v any) {
	data := marshal(v)
	if data == nil {
		return
	}
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return
	}
	if err := sess.Signal().TrySend(data); err != nil {
		log.Warn().Str("module", "orch").Str("sid", string(sid)).Msg("send dropped")
	}
}

func (o *Coordinator) handleDropped(room core.RoomService, res core.PublishResult) {
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(room, slow) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("sid", string(slow)).Msg("kicking slow member")
			// Cancel first: Disconnect unbinds the session, and the
			// cancel func must still be reachable to stop the pumps.
			o.Registry.Cancel(slow)
			o.Disconnect(slow)
		case app.MarkSlow, app.DropFrame, app.NoAction:
		}
	}
}

// Disconnect is the single cleanup path for a dying connection: leave the
// room with normal teardown rules, repoint anyone watching the gone buffer,
// drop every voice roster entry, and forget the connection. Idempotent, so
// an adapter-driven close racing a policy kick is harmless.
func (o *Coordinator) Disconnect(sid core.SessionID) {
	if _, room, ok := o.roomOf(sid); ok {
		// Anyone watching the dying connection's buffer falls back to
		// their own; explicit leave keeps the buffer observable instead.
		for _, viewer := range room.ResetViewersOf(sid) {
			if code, ok := room.Buffer(viewer); ok {
				o.send(viewer, codeUpdateEvent{Type: EvCodeUpdate, Owner: domain.UserID(viewer), Code: code})
			}
		}
	}
	o.Leave(sid)
	for _, roomID := range o.Voice.DropAll(sid) {
		o.broadcastVoiceLeft(roomID, sid)
	}
	if _, ok := o.Registry.GetSession(sid); !ok {
		return
	}
	o.Registry.Unbind(sid)
	log.Info().Str("module", "orch").Str("sid", string(sid)).Msg("disconnected")
}

// PushStats fans the current counters out to every live connection.
func (o *Coordinator) PushStats() {
	data := marshal(statsEvent{Type: EvStatsUpdate, StatsSnapshot: o.Stats.Snapshot()})
	if data == nil {
		return
	}
	for _, sess := range o.Registry.Sessions() {
		_ = sess.Signal().TrySend(data)
	}
}

// SendStats answers a single connection's stats request.
func (o *Coordinator) SendStats(sid core.SessionID) {
	o.send(sid, statsEvent{Type: EvStatsUpdate, StatsSnapshot: o.Stats.Snapshot()})
}
