package core

import (
	"errors"
	"sync"
	"testing"

	"github.com/avolkov/peerpad/internal/domain"
)

var errFakeBackpressure = errors.New("backpressure")

type fakeConn struct {
	mu     sync.Mutex
	frames []Frame
	fail   bool
}

func (f *fakeConn) TrySend(fr Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errFakeBackpressure
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func newMember(id string) (SessionID, MemberSession, *fakeConn) {
	conn := &fakeConn{}
	u := &domain.User{ID: domain.UserID(id), Username: id}
	return SessionID(id), NewMemberSession(u, conn), conn
}

func newTestRoom(lang domain.Language, host SessionID) RoomService {
	return NewRoomService(&domain.Room{ID: "r1", Language: lang}, host)
}

func TestCanEdit(t *testing.T) {
	cases := []struct {
		name                       string
		host, caller, target, view SessionID
		want                       bool
	}{
		{"host edits anyone", "a", "a", "b", "a", true},
		{"host edits self", "a", "a", "a", "c", true},
		{"viewer edits viewed buffer", "a", "b", "c", "c", true},
		{"viewer edits own while viewing it", "a", "b", "b", "b", true},
		{"non-viewer rejected", "a", "b", "c", "b", false},
		{"own buffer while viewing elsewhere rejected", "a", "b", "b", "c", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanEdit(tc.host, tc.caller, tc.target, tc.view); got != tc.want {
				t.Fatalf("CanEdit(%s,%s,%s,%s) = %v, want %v", tc.host, tc.caller, tc.target, tc.view, got, tc.want)
			}
		})
	}
}

func TestJoinCreatesDefaultState(t *testing.T) {
	a, ms, _ := newMember("a")
	room := newTestRoom(domain.LangPython, a)

	snap := room.Join(a, ms)

	if snap.Code != "# Start coding here..." {
		t.Fatalf("default buffer = %q", snap.Code)
	}
	if !snap.IsHost {
		t.Fatal("creator should be host")
	}
	if snap.Viewing != a {
		t.Fatalf("fresh view should point at self, got %s", snap.Viewing)
	}
	if len(snap.Participants) != 1 {
		t.Fatalf("participants = %d, want 1", len(snap.Participants))
	}
	if v, _ := room.ViewOf(a); v != a {
		t.Fatalf("ViewOf = %s, want self", v)
	}
}

func TestRejoinKeepsBuffer(t *testing.T) {
	a, ms, _ := newMember("a")
	room := newTestRoom(domain.LangJavaScript, a)
	room.Join(a, ms)
	if _, err := room.ApplyEdit(a, a, "let x = 1"); err != nil {
		t.Fatal(err)
	}
	room.Leave(a)

	snap := room.Join(a, ms)
	if snap.Code != "let x = 1" {
		t.Fatalf("rejoin buffer = %q, want edit to survive", snap.Code)
	}
}

func TestApplyEditFanOutSet(t *testing.T) {
	a, msA, _ := newMember("a")
	b, msB, _ := newMember("b")
	c, msC, _ := newMember("c")
	room := newTestRoom(domain.LangPython, a)
	room.Join(a, msA)
	room.Join(b, msB)
	room.Join(c, msC)

	// b watches a; c keeps watching itself.
	if _, err := room.SetView(b, a); err != nil {
		t.Fatal(err)
	}

	viewers, err := room.ApplyEdit(a, a, "print(1)")
	if err != nil {
		t.Fatal(err)
	}
	got := map[SessionID]bool{}
	for _, v := range viewers {
		got[v] = true
	}
	if !got[a] || !got[b] || got[c] || len(got) != 2 {
		t.Fatalf("fan-out set = %v, want exactly {a, b}", viewers)
	}

	if code, _ := room.Buffer(b); code != domain.LangPython.DefaultCode() {
		t.Fatalf("b's own buffer changed: %q", code)
	}
}

func TestNonHostEditRejected(t *testing.T) {
	a, msA, _ := newMember("a")
	b, msB, _ := newMember("b")
	room := newTestRoom(domain.LangPython, a)
	room.Join(a, msA)
	room.Join(b, msB)

	if _, err := room.ApplyEdit(b, a, "pwned"); err != domain.ErrNotViewing {
		t.Fatalf("err = %v, want ErrNotViewing", err)
	}
	if code, _ := room.Buffer(a); code != domain.LangPython.DefaultCode() {
		t.Fatalf("target buffer mutated: %q", code)
	}
}

func TestHostOverride(t *testing.T) {
	a, msA, _ := newMember("a")
	b, msB, _ := newMember("b")
	room := newTestRoom(domain.LangPython, a)
	room.Join(a, msA)
	room.Join(b, msB)

	// Host keeps viewing itself but names b explicitly.
	viewers, err := room.ApplyEdit(a, b, "x = 2")
	if err != nil {
		t.Fatal(err)
	}
	if code, _ := room.Buffer(b); code != "x = 2" {
		t.Fatalf("buffer = %q", code)
	}
	if len(viewers) != 1 || viewers[0] != b {
		t.Fatalf("viewers = %v, want just b (viewing itself)", viewers)
	}
}

func TestEditByNonMemberRejected(t *testing.T) {
	a, msA, _ := newMember("a")
	room := newTestRoom(domain.LangPython, a)
	room.Join(a, msA)

	if _, err := room.ApplyEdit("ghost", a, "boo"); err != domain.ErrNotMember {
		t.Fatalf("err = %v, want ErrNotMember", err)
	}
}

func TestSetViewUnknownTarget(t *testing.T) {
	a, msA, _ := newMember("a")
	room := newTestRoom(domain.LangPython, a)
	room.Join(a, msA)

	if _, err := room.SetView(a, "nobody"); err != domain.ErrNoSuchTarget {
		t.Fatalf("err = %v, want ErrNoSuchTarget", err)
	}
}

func TestLeaveRetainsBufferUntilTeardown(t *testing.T) {
	a, msA, _ := newMember("a")
	b, msB, _ := newMember("b")
	room := newTestRoom(domain.LangPython, a)
	room.Join(a, msA)
	room.Join(b, msB)

	remaining, ok := room.Leave(b)
	if !ok || remaining != 1 {
		t.Fatalf("remaining = %d ok = %v", remaining, ok)
	}
	if _, ok := room.Buffer(b); !ok {
		t.Fatal("buffer should be retained for host inspection")
	}
	if _, ok := room.ViewOf(b); ok {
		t.Fatal("view entry should be gone")
	}

	// The host can still observe the retained buffer.
	if _, err := room.SetView(a, b); err != nil {
		t.Fatalf("host cannot view retained buffer: %v", err)
	}

	if _, ok := room.Leave(b); ok {
		t.Fatal("second leave should be a no-op")
	}
}

func TestResetViewersOf(t *testing.T) {
	a, msA, _ := newMember("a")
	b, msB, _ := newMember("b")
	c, msC, _ := newMember("c")
	room := newTestRoom(domain.LangPython, a)
	room.Join(a, msA)
	room.Join(b, msB)
	room.Join(c, msC)
	room.SetView(b, a)
	room.SetView(c, a)

	reset := room.ResetViewersOf(a)
	if len(reset) != 2 {
		t.Fatalf("reset = %v, want b and c", reset)
	}
	if v, _ := room.ViewOf(b); v != b {
		t.Fatalf("b now views %s, want self", v)
	}
	if v, _ := room.ViewOf(c); v != c {
		t.Fatalf("c now views %s, want self", v)
	}
}

func TestBroadcastPrimitives(t *testing.T) {
	a, msA, connA := newMember("a")
	b, msB, connB := newMember("b")
	c, msC, connC := newMember("c")
	room := newTestRoom(domain.LangPython, a)
	room.Join(a, msA)
	room.Join(b, msB)
	room.Join(c, msC)

	if res := room.BroadcastAll(Frame("x")); res.SentTo != 3 {
		t.Fatalf("BroadcastAll sent_to = %d", res.SentTo)
	}
	if res := room.BroadcastExcept(a, Frame("x")); res.SentTo != 2 {
		t.Fatalf("BroadcastExcept sent_to = %d", res.SentTo)
	}
	if connA.count() != 1 || connB.count() != 2 || connC.count() != 2 {
		t.Fatalf("frame counts = %d/%d/%d", connA.count(), connB.count(), connC.count())
	}

	if res := room.SendToSet([]SessionID{a, c, "ghost"}, Frame("y")); res.SentTo != 2 {
		t.Fatalf("SendToSet sent_to = %d", res.SentTo)
	}
}

func TestBroadcastReportsDropped(t *testing.T) {
	a, msA, _ := newMember("a")
	b, msB, connB := newMember("b")
	room := newTestRoom(domain.LangPython, a)
	room.Join(a, msA)
	room.Join(b, msB)
	connB.fail = true

	res := room.BroadcastAll(Frame("x"))
	if res.SentTo != 1 || len(res.Dropped) != 1 || res.Dropped[0] != b {
		t.Fatalf("res = %+v, want b dropped", res)
	}
}

func TestSetLanguageHostOnly(t *testing.T) {
	a, msA, _ := newMember("a")
	b, msB, _ := newMember("b")
	room := newTestRoom(domain.LangPython, a)
	room.Join(a, msA)
	room.Join(b, msB)

	if err := room.SetLanguage(b, domain.LangJava); err != domain.ErrNotHost {
		t.Fatalf("err = %v, want ErrNotHost", err)
	}
	if err := room.SetLanguage(a, domain.LangJava); err != nil {
		t.Fatal(err)
	}
	if room.Language() != domain.LangJava {
		t.Fatalf("language = %s", room.Language())
	}
	// Buffers are untouched by a language switch.
	if code, _ := room.Buffer(b); code != domain.LangPython.DefaultCode() {
		t.Fatalf("buffer changed on language switch: %q", code)
	}
}
