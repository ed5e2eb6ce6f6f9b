package app

import (
	"testing"

	"github.com/avolkov/peerpad/internal/core"
	"github.com/avolkov/peerpad/internal/domain"
)

func TestVoiceJoinReturnsExistingPeers(t *testing.T) {
	v := NewVoiceRoster()

	if peers := v.Join("r1", "a", "alice"); len(peers) != 0 {
		t.Fatalf("first joiner peers = %v", peers)
	}
	peers := v.Join("r1", "b", "bob")
	if len(peers) != 1 || peers[0] != core.SessionID("a") {
		t.Fatalf("peers = %v, want [a]", peers)
	}

	// Rejoin must not list yourself.
	if peers := v.Join("r1", "b", "bob"); len(peers) != 1 || peers[0] != core.SessionID("a") {
		t.Fatalf("rejoin peers = %v", peers)
	}
}

func TestVoiceLeave(t *testing.T) {
	v := NewVoiceRoster()
	v.Join("r1", "a", "alice")

	if !v.Leave("r1", "a") {
		t.Fatal("leave should report removal")
	}
	if v.Leave("r1", "a") {
		t.Fatal("second leave should be a no-op")
	}
	if v.Contains("r1", "a") {
		t.Fatal("still on roster")
	}
	if len(v.Roster("r1")) != 0 {
		t.Fatal("roster not empty")
	}
}

func TestVoiceDropAllUsesReverseIndex(t *testing.T) {
	v := NewVoiceRoster()
	v.Join("r1", "a", "alice")
	v.Join("r2", "a", "alice")
	v.Join("r1", "b", "bob")

	rooms := v.DropAll("a")
	if len(rooms) != 2 {
		t.Fatalf("affected rooms = %v", rooms)
	}
	seen := map[domain.RoomID]bool{}
	for _, r := range rooms {
		seen[r] = true
	}
	if !seen["r1"] || !seen["r2"] {
		t.Fatalf("rooms = %v", rooms)
	}
	if v.Contains("r1", "a") || v.Contains("r2", "a") {
		t.Fatal("a still on a roster")
	}
	if !v.Contains("r1", "b") {
		t.Fatal("b must be untouched")
	}

	if rooms := v.DropAll("a"); rooms != nil {
		t.Fatalf("second drop = %v, want nil", rooms)
	}
}
