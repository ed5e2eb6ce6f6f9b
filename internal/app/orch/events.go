package orch

import (
	"encoding/json"

	"github.com/avolkov/peerpad/internal/app"
	"github.com/avolkov/peerpad/internal/core"
	"github.com/avolkov/peerpad/internal/domain"
)

// Server-push event payloads. Everything the coordinator fans out is one of
// these; request parsing lives in the signal adapter.

const (
	EvRoomState       = "room-state"
	EvUserJoined      = "user-joined"
	EvUserLeft        = "user-left"
	EvRoomEnded       = "room-ended"
	EvCodeUpdate      = "code-update"
	EvViewChanged     = "view-state-changed"
	EvReceiveMessage  = "receive-message"
	EvLanguageChanged = "language-changed"
	EvVoiceRoster     = "voice-roster"
	EvVoiceJoined     = "voice-participant-joined"
	EvVoiceLeft       = "voice-participant-left"
	EvVoiceInitiate   = "voice-initiate"
	EvStatsUpdate     = "stats-update"
)

type roomStateEvent struct {
	Type string `json:"type"`
	core.RoomSnapshot
}

type rosterEvent struct {
	Type         string           `json:"type"`
	User         domain.User      `json:"user"`
	Participants []core.MemberDTO `json:"participants"`
}

type roomEndedEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type codeUpdateEvent struct {
	Type  string        `json:"type"`
	Owner domain.UserID `json:"owner"`
	Code  string        `json:"code"`
}

type viewChangedEvent struct {
	Type    string        `json:"type"`
	User    domain.UserID `json:"user"`
	Viewing domain.UserID `json:"viewing"`
}

type chatEvent struct {
	Type     string        `json:"type"`
	Message  string        `json:"message"`
	Sender   domain.UserID `json:"sender"`
	Username string        `json:"username"`
}

type languageChangedEvent struct {
	Type     string          `json:"type"`
	Language domain.Language `json:"language"`
}

type voiceRosterEvent struct {
	Type         string               `json:"type"`
	Participants []app.VoiceMemberDTO `json:"participants"`
}

type voiceMemberEvent struct {
	Type string      `json:"type"`
	User domain.User `json:"user"`
}

type voiceLeftEvent struct {
	Type         string               `json:"type"`
	User         domain.User          `json:"user"`
	Participants []app.VoiceMemberDTO `json:"participants"`
}

type voiceInitiateEvent struct {
	Type string      `json:"type"`
	Peer domain.User `json:"peer"`
}

// voiceSignalEvent relays an SDP offer/answer or ICE candidate. The payload
// is never interpreted here; it is an opaque blob between the two peers.
type voiceSignalEvent struct {
	Type    string          `json:"type"`
	From    domain.UserID   `json:"from"`
	Payload json.RawMessage `json:"payload"`
}

type statsEvent struct {
	Type string `json:"type"`
	app.StatsSnapshot
}
