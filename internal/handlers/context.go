// Package handlers implements the request/reply logic named by spec.md
// §4.7: Login, Agreed, SendChat, SendInstantMsg, GetUserNameList,
// GetClientInfoText, and GetFileNameList. Handlers never hold the
// registry lock across a suspension point; they copy the snapshots they
// need and release (spec.md §5).
package handlers

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/DaCodeChick/rhxd/internal/broadcast"
	"github.com/DaCodeChick/rhxd/internal/config"
	"github.com/DaCodeChick/rhxd/internal/db"
	"github.com/DaCodeChick/rhxd/internal/session"
)

// Context carries the dependencies every handler needs: the shared
// registry and broadcast hub, the account store, server configuration,
// and the invoking session. It is constructed once per transaction
// dispatch by the session task.
type Context struct {
	Registry *session.Registry
	Hub      *broadcast.Hub
	Accounts db.AccountStore
	Config   *config.Config
	Session  *session.Session
	Logger   zerolog.Logger
}

// NewContext builds a Context for a single session, deriving a logger
// tagged with the session's user id.
func NewContext(registry *session.Registry, hub *broadcast.Hub, accounts db.AccountStore, cfg *config.Config, s *session.Session) Context {
	return Context{
		Registry: registry,
		Hub:      hub,
		Accounts: accounts,
		Config:   cfg,
		Session:  s,
		Logger:   log.With().Uint16("user_id", s.UserID()).Logger(),
	}
}
