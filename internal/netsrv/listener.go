// Package netsrv drives the TCP accept loop and per-session I/O that
// connect an incoming socket to the handshake, dispatch, and broadcast
// machinery of internal/session, internal/handlers, and
// internal/broadcast.
package netsrv

import (
	"context"
	"fmt"
	"net"

	"github.com/rs/zerolog"

	"github.com/DaCodeChick/rhxd/internal/broadcast"
	"github.com/DaCodeChick/rhxd/internal/config"
	"github.com/DaCodeChick/rhxd/internal/db"
	"github.com/DaCodeChick/rhxd/internal/session"
	"github.com/DaCodeChick/rhxd/internal/util"
)

// Listener accepts TCP connections and spins up a SessionTask for each,
// grounded on the teacher's TCPListener.Start/handleConnection accept
// loop shape.
type Listener struct {
	cfg      *config.Config
	registry *session.Registry
	hub      *broadcast.Hub
	accounts db.AccountStore

	listener net.Listener
	logger   zerolog.Logger
}

// NewListener creates a Listener that will accept on cfg's configured
// address and port once Start runs.
func NewListener(cfg *config.Config, registry *session.Registry, hub *broadcast.Hub, accounts db.AccountStore) *Listener {
	return &Listener{
		cfg:      cfg,
		registry: registry,
		hub:      hub,
		accounts: accounts,
		logger:   util.ComponentLogger("netsrv"),
	}
}

// Start binds the listening socket and accepts connections until ctx is
// cancelled. Each accepted connection is handed to its own SessionTask
// goroutine.
func (l *Listener) Start(ctx context.Context) error {
	snap := l.cfg.Snapshot()
	addr := fmt.Sprintf("%s:%d", snap.ListenAddr, snap.ListenPort)

	var lc net.ListenConfig
	var err error
	l.listener, err = lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start TCP listener on %s: %w", addr, err)
	}

	l.logger.Info().Str("addr", addr).Msg("listening")

	go func() {
		<-ctx.Done()
		l.listener.Close()
	}()

	for {
		conn, err := l.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				l.logger.Info().Msg("listener stopping")
				return nil
			default:
				l.logger.Error().Err(err).Msg("accept failed")
				continue
			}
		}

		task, err := NewSessionTask(conn, l.registry, l.hub, l.accounts, l.cfg)
		if err != nil {
			l.logger.Warn().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("connection refused")
			conn.Close()
			continue
		}
		go task.Run(ctx)
	}
}

// Stop closes the listening socket, unblocking any in-progress Accept.
func (l *Listener) Stop() error {
	if l.listener != nil {
		return l.listener.Close()
	}
	return nil
}
