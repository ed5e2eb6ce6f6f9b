package app

import (
	"testing"

	"github.com/avolkov/peerpad/internal/domain"
)

func TestRoomManagerLifecycle(t *testing.T) {
	m := NewRoomManager()

	if _, ok := m.Get("r1"); ok {
		t.Fatal("unknown room reported present")
	}

	room := m.Create("r1", domain.LangPython, "a")
	if got, ok := m.Get("r1"); !ok || got != room {
		t.Fatal("created room not retrievable")
	}

	// Create on an existing id keeps the original room and host.
	if again := m.Create("r1", domain.LangJava, "b"); again != room {
		t.Fatal("duplicate create replaced the room")
	}
	if room.Language() != domain.LangPython {
		t.Fatalf("language = %s, want original", room.Language())
	}
	if room.Host() != "a" {
		t.Fatalf("host = %s, want original", room.Host())
	}

	list := m.List()
	if len(list) != 1 || list[0].ID != "r1" {
		t.Fatalf("list = %v", list)
	}

	m.Remove("r1")
	if _, ok := m.Get("r1"); ok {
		t.Fatal("room not removed")
	}
}
