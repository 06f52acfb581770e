// Package session implements the per-connection state machine and
// process-wide registry described by spec.md §3-4.6: session records,
// their handshake→login→agreeing→active→closing progression, and the
// bounded per-session outbound mailbox that feeds each connection's
// writer.
package session

import (
	"net"
	"sync"
	"time"

	"github.com/DaCodeChick/rhxd/internal/protocol"
	"github.com/DaCodeChick/rhxd/internal/wire"
)

// State is a session's position in the handshake/login/agreement/active
// state machine (spec.md §4.6).
type State int

const (
	StateHandshaking State = iota
	StateLoggedIn
	StateAgreeing
	StateActive
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateHandshaking:
		return "Handshaking"
	case StateLoggedIn:
		return "LoggedIn"
	case StateAgreeing:
		return "Agreeing"
	case StateActive:
		return "Active"
	case StateClosing:
		return "Closing"
	default:
		return "Unknown"
	}
}

// DefaultMailboxSize is the bounded outbound mailbox capacity applied
// when a caller does not specify one.
const DefaultMailboxSize = 64

// Session is the thread-safe per-connection record described by
// spec.md §3. Fields are guarded by mu; callers must not read them
// directly.
type Session struct {
	mu sync.RWMutex

	userID        uint16
	accountID     *uint32
	nickname      string
	iconID        int16
	flags         uint16
	access        wire.AccessPrivileges
	addr          net.Addr
	connectedAt   time.Time
	lastActivity  time.Time
	clientVersion uint16
	state         State

	outbound chan protocol.Transaction
}

// New creates a Session in the Handshaking state for a freshly accepted
// connection. mailboxSize bounds the outbound queue (spec.md §5); pass
// 0 to use DefaultMailboxSize.
func New(userID uint16, addr net.Addr, mailboxSize int) *Session {
	if mailboxSize <= 0 {
		mailboxSize = DefaultMailboxSize
	}
	now := time.Now()
	return &Session{
		userID:       userID,
		addr:         addr,
		connectedAt:  now,
		lastActivity: now,
		state:        StateHandshaking,
		outbound:     make(chan protocol.Transaction, mailboxSize),
	}
}

// UserID returns the session's immutable protocol user id.
func (s *Session) UserID() uint16 {
	return s.userID
}

// Addr returns the session's remote address, set at creation and never
// mutated.
func (s *Session) Addr() net.Addr {
	return s.addr
}

// ConnectedAt returns the time the underlying connection was accepted.
func (s *Session) ConnectedAt() time.Time {
	return s.connectedAt
}

// GetState returns the session's current state machine position.
func (s *Session) GetState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetState updates the state machine position and returns the previous
// state.
func (s *Session) SetState(state State) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.state
	s.state = state
	return old
}

// GetNickname returns the session's nickname, empty before Agreed.
func (s *Session) GetNickname() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nickname
}

// SetNickname sets the session's nickname (spec.md §3: ≤ 31 bytes after
// Agreed; callers validate length before calling this).
func (s *Session) SetNickname(nickname string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nickname = nickname
}

// GetIconID returns the session's icon id.
func (s *Session) GetIconID() int16 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.iconID
}

// SetIconID sets the session's icon id.
func (s *Session) SetIconID(iconID int16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.iconID = iconID
}

// GetFlags returns the session's status flags.
func (s *Session) GetFlags() uint16 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags
}

// SetFlags sets the session's status flags.
func (s *Session) SetFlags(flags uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags = flags
}

// GetAccess returns the session's access privileges.
func (s *Session) GetAccess() wire.AccessPrivileges {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

// SetAccess sets the session's access privileges, established at login.
func (s *Session) SetAccess(access wire.AccessPrivileges) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
}

// GetAccountID returns the session's account database key, or nil for
// a guest.
func (s *Session) GetAccountID() *uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accountID
}

// SetAccountID records the session's account database key.
func (s *Session) SetAccountID(accountID *uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accountID = accountID
}

// GetClientVersion returns the client version reported at login (field
// 160), for reporting purposes only.
func (s *Session) GetClientVersion() uint16 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientVersion
}

// SetClientVersion records the client version reported at login.
func (s *Session) SetClientVersion(version uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clientVersion = version
}

// LastActivity returns the time of the session's most recent Touch,
// which the session task calls after each inbound transaction part.
func (s *Session) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

// Touch records activity now. last_activity is monotonically
// non-decreasing within a session (spec.md §3 invariant).
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if now.After(s.lastActivity) {
		s.lastActivity = now
	}
}

// Summary returns a read-only snapshot of the session's roster-visible
// fields, safe to hold without the session's lock.
func (s *Session) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Summary{
		UserID:    s.userID,
		Nickname:  s.nickname,
		IconID:    s.iconID,
		Flags:     s.flags,
		Access:    s.access,
		State:     s.state,
		Addr:      s.addr,
		AccountID: s.accountID,
	}
}

// Enqueue attempts a non-blocking send of tx to the session's outbound
// mailbox. It reports whether the send succeeded; a full mailbox means
// the session is stuck, per spec.md §5's backpressure policy — callers
// decide per event class whether a failed enqueue is tolerable (Chat)
// or must force a transition to Closing (roster events).
func (s *Session) Enqueue(tx protocol.Transaction) bool {
	select {
	case s.outbound <- tx:
		return true
	default:
		return false
	}
}

// Outbound returns the receive side of the outbound mailbox, for the
// session's writer loop to drain.
func (s *Session) Outbound() <-chan protocol.Transaction {
	return s.outbound
}

// Summary is an immutable, roster-visible view of a session (spec.md
// §4.5's SessionSummary).
type Summary struct {
	UserID    uint16
	Nickname  string
	IconID    int16
	Flags     uint16
	Access    wire.AccessPrivileges
	State     State
	Addr      net.Addr
	AccountID *uint32
}
