package session

import (
	"net"
	"testing"

	"github.com/DaCodeChick/rhxd/internal/protocol"
)

func TestSessionStateTransitions(t *testing.T) {
	s := New(1, &net.TCPAddr{}, 0)
	if got := s.GetState(); got != StateHandshaking {
		t.Fatalf("initial state = %v, want Handshaking", got)
	}
	old := s.SetState(StateLoggedIn)
	if old != StateHandshaking {
		t.Errorf("SetState returned %v, want previous Handshaking", old)
	}
	if got := s.GetState(); got != StateLoggedIn {
		t.Errorf("state = %v, want LoggedIn", got)
	}
}

func TestSessionMailboxBackpressure(t *testing.T) {
	s := New(1, &net.TCPAddr{}, 1)
	tx := protocol.Transaction{Kind: protocol.TranChatMessage}

	if !s.Enqueue(tx) {
		t.Fatalf("first enqueue on empty mailbox should succeed")
	}
	if s.Enqueue(tx) {
		t.Fatalf("enqueue on full mailbox should fail")
	}

	<-s.Outbound()
	if !s.Enqueue(tx) {
		t.Fatalf("enqueue after drain should succeed")
	}
}

func TestSessionTouchMonotonic(t *testing.T) {
	s := New(1, &net.TCPAddr{}, 0)
	first := s.LastActivity()
	s.Touch()
	if s.LastActivity().Before(first) {
		t.Errorf("LastActivity went backwards after Touch")
	}
}

func TestSessionSummaryReflectsFields(t *testing.T) {
	s := New(7, &net.TCPAddr{}, 0)
	s.SetNickname("Bob")
	s.SetIconID(-1)
	s.SetFlags(2)

	sum := s.Summary()
	if sum.UserID != 7 || sum.Nickname != "Bob" || sum.IconID != -1 || sum.Flags != 2 {
		t.Errorf("Summary = %+v, unexpected", sum)
	}
}
