package app

import (
	"testing"

	"github.com/avolkov/peerpad/internal/core"
	"github.com/avolkov/peerpad/internal/domain"
)

type nopConn struct{}

func (nopConn) TrySend(core.Frame) error { return nil }
func (nopConn) Close()                   {}

func bind(r *Registry, id string) {
	sid := core.SessionID(id)
	u := r.GetOrCreateUser(sid)
	r.BindSignal(sid, core.NewMemberSession(u, nopConn{}), nil)
}

func TestRegistryUserLifecycle(t *testing.T) {
	r := NewRegistry()

	u := r.GetOrCreateUser("a")
	if u.Username != "guest" {
		t.Fatalf("fresh username = %q", u.Username)
	}
	if again := r.GetOrCreateUser("a"); again != u {
		t.Fatal("same sid must return the same user")
	}

	if err := r.UpdateUsername("a", "alice"); err != nil {
		t.Fatal(err)
	}
	if u.Username != "alice" {
		t.Fatalf("username = %q", u.Username)
	}
	if err := r.UpdateUsername("ghost", "x"); err != domain.ErrNoSuchTarget {
		t.Fatalf("err = %v", err)
	}
}

func TestRegistryRoomIndex(t *testing.T) {
	r := NewRegistry()
	bind(r, "a")

	if _, _, ok := r.RoomOf("a"); ok {
		t.Fatal("unbound session should have no room")
	}
	if !r.UpdateRoom("a", "r1") {
		t.Fatal("update failed")
	}
	id, sess, ok := r.RoomOf("a")
	if !ok || id != "r1" || sess == nil {
		t.Fatalf("RoomOf = %v %v %v", id, sess, ok)
	}

	r.ClearRoom("a")
	if _, _, ok := r.RoomOf("a"); ok {
		t.Fatal("room index should be cleared")
	}
	// The session itself survives a room clear.
	if _, ok := r.GetSession("a"); !ok {
		t.Fatal("session gone")
	}

	r.Unbind("a")
	if _, ok := r.GetSession("a"); ok {
		t.Fatal("session should be unbound")
	}
	if r.UpdateRoom("a", "r2") {
		t.Fatal("update on unbound sid should fail")
	}
}

func TestRegistrySessionsSnapshot(t *testing.T) {
	r := NewRegistry()
	bind(r, "a")
	bind(r, "b")

	if got := len(r.Sessions()); got != 2 {
		t.Fatalf("sessions = %d", got)
	}
}
