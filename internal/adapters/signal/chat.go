package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/avolkov/peerpad/internal/core"
)

func (ctl *SignalWSController) handleChatMessage(sid core.SessionID, data []byte) {
	type chatPayload struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	var p chatPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad chat payload")
		return
	}
	if p.Message == "" {
		return
	}
	ctl.Coord.Chat(sid, p.Message)
}
