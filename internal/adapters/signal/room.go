package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/avolkov/peerpad/internal/core"
	"github.com/avolkov/peerpad/internal/domain"
)

func (ctl *SignalWSController) handleJoinRoom(sid core.SessionID, c *WsSignalConn, data []byte) {
	type joinPayload struct {
		Type     string `json:"type"`
		Room     string `json:"room"`
		Language string `json:"language,omitempty"`
		Username string `json:"username,omitempty"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	if p.Room == "" {
		ctl.sendError(c, "empty room")
		return
	}
	if !ctl.Limiter.Allow(sid) {
		ctl.sendError(c, "rate_limited")
		return
	}

	err := ctl.Coord.Join(sid, domain.RoomID(p.Room), p.Language, p.Username)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrRoomNotFound):
		ctl.sendError(c, "Room not found")
	case errors.Is(err, domain.ErrUnsupportedLanguage):
		ctl.sendError(c, "unsupported language")
	case errors.Is(err, domain.ErrUsernameEmpty), errors.Is(err, domain.ErrUsernameTooLong):
		ctl.sendError(c, "invalid_name")
	default:
		ctl.sendError(c, "bad_request")
	}
}

func (ctl *SignalWSController) handleLeaveRoom(sid core.SessionID) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("leave-room")
	ctl.Coord.Leave(sid)
}

func (ctl *SignalWSController) handleEndRoom(sid core.SessionID) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("end-room")
	ctl.Coord.End(sid)
}

func (ctl *SignalWSController) handleChangeLanguage(sid core.SessionID, data []byte) {
	type langPayload struct {
		Type     string `json:"type"`
		Language string `json:"language"`
	}
	var p langPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad change-language payload")
		return
	}
	ctl.Coord.ChangeLanguage(sid, p.Language)
}
