package session

import (
	"errors"
	"net"
	"sync"
)

// ErrCapacityExceeded is returned by Allocate when max_connections
// active sessions already exist (spec.md §8's boundary behavior: the
// connect at exactly max_connections succeeds, the next is refused).
var ErrCapacityExceeded = errors.New("session: capacity exceeded")

// Registry is the process-wide, concurrently accessed map from
// protocol user id to session record (spec.md §4.5). It is the single
// authority on liveness: snapshot is the common operation, insert and
// remove are rare, so callers favor a readers-prefer strategy.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uint16]*Session
	max      int
}

// NewRegistry creates an empty Registry capped at max concurrent
// sessions.
func NewRegistry(max int) *Registry {
	return &Registry{
		sessions: make(map[uint16]*Session),
		max:      max,
	}
}

// Allocate reserves the next free user id in 1..=65535 and creates a
// Session for addr in the Handshaking state. It fails with
// ErrCapacityExceeded if max_connections active sessions already
// exist; the caller must refuse the connection before replying to the
// handshake, per spec.md §8.
func (r *Registry) Allocate(addr net.Addr, mailboxSize int) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.sessions) >= r.max {
		return nil, ErrCapacityExceeded
	}

	id, ok := r.nextFreeIDLocked()
	if !ok {
		return nil, ErrCapacityExceeded
	}

	s := New(id, addr, mailboxSize)
	r.sessions[id] = s
	return s, nil
}

// nextFreeIDLocked returns the lowest unused id in 1..=65535, so an id
// released by Remove is handed out again by a later Allocate. Reuse
// after destruction is permitted since the protocol keeps no durable
// reference to past ids (spec.md §4.5).
func (r *Registry) nextFreeIDLocked() (uint16, bool) {
	for id := 1; id <= 65535; id++ {
		if _, taken := r.sessions[uint16(id)]; !taken {
			return uint16(id), true
		}
	}
	return 0, false
}

// Insert adds an already-constructed session to the registry. Allocate
// is the normal path; Insert exists for tests and for reinserting a
// session under its already-allocated id.
func (r *Registry) Insert(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.UserID()] = s
}

// Remove deletes a session from the registry, returning it if present.
func (r *Registry) Remove(userID uint16) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	if ok {
		delete(r.sessions, userID)
	}
	return s, ok
}

// Get returns the roster summary for userID.
func (r *Registry) Get(userID uint16) (Summary, bool) {
	r.mu.RLock()
	s, ok := r.sessions[userID]
	r.mu.RUnlock()
	if !ok {
		return Summary{}, false
	}
	return s.Summary(), true
}

// GetSession returns the live session for userID, for handlers that
// need more than the roster-visible summary (e.g. to enqueue a direct
// message).
func (r *Registry) GetSession(userID uint16) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[userID]
	return s, ok
}

// Snapshot returns a consistent list of every registered session's
// summary, including sessions still handshaking or logging in. Callers
// that need the roster-visible set (spec.md §4.7: "one entry per active
// session") filter on Summary.State themselves. The lock is held only
// long enough to copy summaries out; it is never held across a
// suspension point.
func (r *Registry) Snapshot() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Summary, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s.Summary())
	}
	return out
}

// Each calls fn for every registered session under a shared read lock,
// including sessions still handshaking or logging in. The broadcast
// hub filters to Active sessions itself before delivering. fn must not
// block or call back into the registry.
func (r *Registry) Each(fn func(*Session)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		fn(s)
	}
}

// Count returns the number of registered sessions, in any state.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
