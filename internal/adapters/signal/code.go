package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/avolkov/peerpad/internal/core"
)

func (ctl *SignalWSController) handleCodeChange(sid core.SessionID, data []byte) {
	type codePayload struct {
		Type   string `json:"type"`
		Code   string `json:"code"`
		Target string `json:"target,omitempty"`
	}
	var p codePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad code-change payload")
		return
	}
	ctl.Coord.Edit(sid, core.SessionID(p.Target), p.Code)
}

func (ctl *SignalWSController) handleViewUserCode(sid core.SessionID, data []byte) {
	type viewPayload struct {
		Type   string `json:"type"`
		Target string `json:"target"`
	}
	var p viewPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad view-user-code payload")
		return
	}
	if p.Target == "" {
		return
	}
	ctl.Coord.SwitchView(sid, core.SessionID(p.Target))
}
