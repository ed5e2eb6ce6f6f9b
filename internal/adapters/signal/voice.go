package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/avolkov/peerpad/internal/core"
	"github.com/avolkov/peerpad/internal/domain"
)

func (ctl *SignalWSController) handleJoinVoice(sid core.SessionID) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("join-voice")
	ctl.Coord.JoinVoice(sid)
}

func (ctl *SignalWSController) handleLeaveVoice(sid core.SessionID, data []byte) {
	type leavePayload struct {
		Type string `json:"type"`
		Room string `json:"room,omitempty"`
	}
	var p leavePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad leave-voice payload")
		return
	}
	ctl.Coord.LeaveVoice(sid, domain.RoomID(p.Room))
}

// handleVoiceSignal relays offer/answer/candidate blobs between two peers.
// The payload stays opaque end to end.
func (ctl *SignalWSController) handleVoiceSignal(sid core.SessionID, kind string, data []byte) {
	type signalPayload struct {
		Type    string          `json:"type"`
		Target  string          `json:"target"`
		Payload json.RawMessage `json:"payload"`
	}
	var p signalPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad voice signal payload")
		return
	}
	if p.Target == "" {
		return
	}
	ctl.Coord.RelaySignal(sid, kind, core.SessionID(p.Target), p.Payload)
}
