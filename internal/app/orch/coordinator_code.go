package orch

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/avolkov/peerpad/internal/core"
	"github.com/avolkov/peerpad/internal/domain"
)

// Edit applies a last-write-wins overwrite to the effective target buffer
// and fans the new content out to exactly the members whose view points at
// that buffer. Rejections are silent: an edit racing a view switch is a
// routine UI condition, not an error worth surfacing.
func (o *Coordinator) Edit(sid core.SessionID, target core.SessionID, code string) {
	_, room, ok := o.roomOf(sid)
	if !ok {
		return
	}

	// No explicit target means "whatever I am looking at"; for non-hosts
	// the access rule collapses that to the viewed buffer anyway, and the
	// host override only applies when a target is named.
	if target == "" {
		if v, ok := room.ViewOf(sid); ok {
			target = v
		} else {
			target = sid
		}
	}

	viewers, err := room.ApplyEdit(sid, target, code)
	if err != nil {
		log.Debug().Str("module", "orch").Str("sid", string(sid)).Str("target", string(target)).Err(err).Msg("edit dropped")
		return
	}

	res := room.SendToSet(viewers, marshal(codeUpdateEvent{
		Type:  EvCodeUpdate,
		Owner: domain.UserID(target),
		Code:  code,
	}))
	o.handleDropped(room, res)

	o.Stats.CodeEdited(int64(strings.Count(code, "\n") + 1))
	o.PushStats()
}

// SwitchView repoints the caller at any buffer in the room, pushes that
// buffer's current content back immediately, and tells the rest of the room
// who is watching what. Informational only for everyone else.
func (o *Coordinator) SwitchView(sid core.SessionID, target core.SessionID) {
	_, room, ok := o.roomOf(sid)
	if !ok {
		return
	}
	code, err := room.SetView(sid, target)
	if err != nil {
		log.Debug().Str("module", "orch").Str("sid", string(sid)).Str("target", string(target)).Err(err).Msg("switch-view dropped")
		return
	}

	o.send(sid, codeUpdateEvent{Type: EvCodeUpdate, Owner: domain.UserID(target), Code: code})

	res := room.BroadcastExcept(sid, marshal(viewChangedEvent{
		Type:    EvViewChanged,
		User:    domain.UserID(sid),
		Viewing: domain.UserID(target),
	}))
	o.handleDropped(room, res)
}
