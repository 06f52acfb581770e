package netsrv

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/DaCodeChick/rhxd/internal/broadcast"
	"github.com/DaCodeChick/rhxd/internal/config"
	"github.com/DaCodeChick/rhxd/internal/db"
	"github.com/DaCodeChick/rhxd/internal/handlers"
	"github.com/DaCodeChick/rhxd/internal/protocol"
	"github.com/DaCodeChick/rhxd/internal/session"
	"github.com/DaCodeChick/rhxd/internal/util"
)

// handshakeTimeout bounds how long a freshly accepted connection has to
// send its 12-byte TRTP preamble before being dropped.
const handshakeTimeout = 30 * time.Second

// SessionTask owns one accepted connection end to end: handshake,
// concurrent read/dispatch and write/drain loops, and teardown. Grounded
// on the teacher's TCPListener.handleConnection loop structure (read,
// parse, dispatch, deferred unregister, net.Error.Timeout() handling).
type SessionTask struct {
	conn     net.Conn
	registry *session.Registry
	hub      *broadcast.Hub
	accounts db.AccountStore
	cfg      *config.Config
	sess     *session.Session
	logger   zerolog.Logger
}

// NewSessionTask allocates a Session for conn and returns a SessionTask
// ready to run. It returns session.ErrCapacityExceeded when
// max_connections active sessions already exist; the caller must refuse
// the connection before any handshake reply is sent (spec.md §8's
// boundary behavior).
func NewSessionTask(conn net.Conn, registry *session.Registry, hub *broadcast.Hub, accounts db.AccountStore, cfg *config.Config) (*SessionTask, error) {
	sess, err := registry.Allocate(conn.RemoteAddr(), session.DefaultMailboxSize)
	if err != nil {
		return nil, err
	}
	return &SessionTask{
		conn:     conn,
		registry: registry,
		hub:      hub,
		accounts: accounts,
		cfg:      cfg,
		sess:     sess,
		logger: util.ComponentLogger("session_task").With().
			Uint16("user_id", sess.UserID()).
			Str("remote", conn.RemoteAddr().String()).
			Logger(),
	}, nil
}

// Run drives the connection from handshake through teardown. It blocks
// until the connection closes, ctx is cancelled, or a framing error
// occurs.
func (t *SessionTask) Run(ctx context.Context) {
	defer t.teardown()

	if !t.handshake() {
		return
	}
	t.sess.SetState(session.StateLoggedIn)

	stop := make(chan struct{})
	writerDone := make(chan struct{})
	go t.writeLoop(stop, writerDone)

	t.readLoop(ctx)

	t.sess.SetState(session.StateClosing)
	close(stop)
	<-writerDone
}

// handshake reads the 12-byte TRTP preamble and replies. An invalid or
// unreadable preamble is a framing error: fatal to the connection, never
// reported over the protocol (spec.md §4.4/§7).
func (t *SessionTask) handshake() bool {
	t.conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	hs, err := protocol.ReadHandshake(t.conn)
	if err != nil {
		t.logger.Debug().Err(err).Msg("handshake read failed")
		return false
	}
	if !hs.Valid() {
		t.logger.Debug().Msg("invalid handshake magic")
		return false
	}
	t.conn.SetReadDeadline(time.Time{})
	if err := protocol.WriteHandshakeReply(t.conn, 0); err != nil {
		t.logger.Debug().Err(err).Msg("handshake reply write failed")
		return false
	}
	return true
}

// readLoop reads and dispatches transactions until the connection errs,
// ctx is cancelled, or the idle timeout elapses (spec.md §5's
// cancellation and timeout rules).
func (t *SessionTask) readLoop(ctx context.Context) {
	idle := time.Duration(t.cfg.Snapshot().IdleTimeoutSecs) * time.Second
	reassembler := protocol.NewReassembler()
	hctx := handlers.NewContext(t.registry, t.hub, t.accounts, t.cfg, t.sess)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if idle > 0 {
			t.conn.SetReadDeadline(time.Now().Add(idle))
		}

		header, data, err := protocol.ReadPart(t.conn)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				t.logger.Info().Msg("idle timeout, closing session")
			} else {
				t.logger.Debug().Err(err).Msg("read error, closing session")
			}
			return
		}
		t.sess.Touch()

		tx, complete, err := reassembler.Feed(header, data)
		if err != nil {
			t.logger.Debug().Err(err).Msg("framing error, closing session")
			return
		}
		if !complete {
			continue
		}

		reply, hasReply := handlers.Dispatch(hctx, tx)
		if hasReply {
			if !t.sess.Enqueue(reply) {
				t.logger.Warn().Msg("reply mailbox full, closing session")
				return
			}
		}

		if t.sess.GetState() == session.StateClosing {
			return
		}
	}
}

// writeLoop drains the session's outbound mailbox to the connection.
// When stop fires it drains whatever is already queued, non-blocking,
// before exiting: a closing session still delivers its pending outbound
// replies before shutdown (spec.md §5).
func (t *SessionTask) writeLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case tx := <-t.sess.Outbound():
			t.write(tx)
		case <-stop:
			t.drain()
			return
		}
	}
}

// drain flushes whatever is already buffered in the outbound mailbox
// without blocking for more.
func (t *SessionTask) drain() {
	for {
		select {
		case tx := <-t.sess.Outbound():
			t.write(tx)
		default:
			return
		}
	}
}

func (t *SessionTask) write(tx protocol.Transaction) {
	t.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := protocol.WriteTransaction(t.conn, tx); err != nil {
		t.logger.Debug().Err(err).Msg("write error")
	}
}

// teardown removes the session from the registry and, if it ever reached
// Active, publishes the matching UserLeft event (spec.md §8's invariant:
// exactly one UserJoined and one UserLeft per session that reaches
// Active, in that order).
func (t *SessionTask) teardown() {
	t.conn.Close()
	reachedActive := t.sess.GetNickname() != ""
	t.registry.Remove(t.sess.UserID())
	if reachedActive {
		t.hub.Publish(broadcast.Event{
			Type:    broadcast.EventUserLeft,
			Payload: broadcast.UserLeftPayload{UserID: t.sess.UserID()},
		})
	}
	t.logger.Info().Msg("session closed")
}
