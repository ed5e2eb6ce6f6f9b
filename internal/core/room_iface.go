package core

import "github.com/avolkov/peerpad/internal/domain"

// PublishResult reports delivery stats/backpressure to the coordinator.
type PublishResult struct {
	SentTo  int
	Dropped []SessionID
}

// MemberDTO is a read-only roster entry for APIs (no transport fields).
type MemberDTO struct {
	ID       domain.UserID `json:"id"`
	Username string        `json:"username"`
	IsHost   bool          `json:"is_host"`
}

// RoomSnapshot is what a joiner gets back: enough to render the session.
type RoomSnapshot struct {
	Room         domain.RoomID   `json:"room"`
	Language     domain.Language `json:"language"`
	Code         string          `json:"code"`
	Participants []MemberDTO     `json:"participants"`
	IsHost       bool            `json:"is_host"`
	Viewing      SessionID       `json:"viewing"`
}

// RoomService is the core-facing API of one room. All mutations for a room
// go through its single lock, which is what keeps last-write-wins buffer
// semantics well-defined. It owns membership, buffers and view state but
// never closes adapter-owned transport resources.
type RoomService interface {
	Meta() *domain.Room
	Language() domain.Language
	SetLanguage(by SessionID, lang domain.Language) error
	Host() SessionID
	IsHost(sid SessionID) bool
	MemberCount() int
	MembersSnapshot() []MemberDTO

	// Join registers a member, lazily creating its buffer with the
	// language placeholder and pointing its view at itself.
	Join(sid SessionID, ms MemberSession) RoomSnapshot
	// Leave removes the member and its view entry; the buffer is retained
	// until room teardown. Returns the remaining member count.
	Leave(sid SessionID) (remaining int, ok bool)

	Buffer(sid SessionID) (string, bool)
	ViewOf(sid SessionID) (SessionID, bool)
	// ApplyEdit overwrites the target buffer and returns the fan-out set:
	// every member whose view currently points at the target.
	ApplyEdit(caller, target SessionID, code string) (viewers []SessionID, err error)
	// SetView repoints the caller's view and returns the target's current
	// buffer content.
	SetView(caller, target SessionID) (code string, err error)
	// ResetViewersOf repoints members watching a gone buffer back at
	// themselves and returns who was repointed.
	ResetViewersOf(gone SessionID) []SessionID

	SendToSet(sids []SessionID, data Frame) PublishResult
	BroadcastExcept(from SessionID, data Frame) PublishResult
	BroadcastAll(data Frame) PublishResult
}

type RoomInfo struct {
	ID          domain.RoomID   `json:"id"`
	Language    domain.Language `json:"language"`
	MemberCount int             `json:"member_count"`
}

// RoomManager is the room store: one entry per live session.
type RoomManager interface {
	Create(id domain.RoomID, lang domain.Language, host SessionID) RoomService
	Get(id domain.RoomID) (RoomService, bool)
	Remove(id domain.RoomID)
	List() []RoomInfo
}
