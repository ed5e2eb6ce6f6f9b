package core

import "github.com/avolkov/peerpad/internal/domain"

type SessionID string

// MemberSession binds a domain.User and its transport endpoint.
// This is what a room stores and fans out to.
type MemberSession interface {
	Meta() *domain.User
	Signal() SignalConnection
}

type memberSession struct {
	meta *domain.User
	conn SignalConnection
}

func NewMemberSession(meta *domain.User, conn SignalConnection) MemberSession {
	return &memberSession{meta: meta, conn: conn}
}

func (m *memberSession) Meta() *domain.User       { return m.meta }
func (m *memberSession) Signal() SignalConnection { return m.conn }
