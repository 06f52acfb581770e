package handlers

import (
	"github.com/DaCodeChick/rhxd/internal/db"
	"github.com/DaCodeChick/rhxd/internal/protocol"
	"github.com/DaCodeChick/rhxd/internal/session"
	"github.com/DaCodeChick/rhxd/internal/wire"
)

// handleLogin implements Login (107): spec.md §4.7. Both login and
// password arrive scrambled (XOR 0xFF). An empty login (after
// unscrambling) authenticates as a guest when allowed and not
// overridden by RequireLogin; otherwise the account store is consulted
// and a mismatch replies LoginFailed without advancing the state
// machine.
func handleLogin(ctx Context, tx protocol.Transaction) (protocol.Transaction, bool) {
	loginField, hasLogin := protocol.First(tx.Fields, protocol.FieldUserLogin)
	passwordField, hasPassword := protocol.First(tx.Fields, protocol.FieldUserPassword)
	versionField, hasVersion := protocol.First(tx.Fields, protocol.FieldVersion)

	if hasVersion && len(versionField.Bytes) >= 2 {
		ctx.Session.SetClientVersion(wire.Uint16(versionField.Bytes))
	}

	var login string
	if hasLogin && len(loginField.Bytes) > 0 {
		login = string(protocol.Scramble(loginField.Bytes))
	}

	cfg := ctx.Config.Snapshot()

	if login == "" {
		if !cfg.AllowGuest || cfg.RequireLogin {
			ctx.Logger.Warn().Msg("guest login attempted but guests are not allowed")
			return protocol.ErrorReply(tx.ID, tx.Kind, protocol.ErrLoginFailed, "guest access disabled"), true
		}
		ctx.Session.SetAccountID(nil)
		ctx.Session.SetAccess(cfg.DefaultGuestAccess)
		ctx.Session.SetState(session.StateAgreeing)
		ctx.Logger.Info().Msg("guest login accepted")
		return loginReply(tx.ID, tx.Kind, cfg.ServerVersion, cfg.ServerName), true
	}

	if !hasPassword {
		return protocol.ErrorReply(tx.ID, tx.Kind, protocol.ErrLoginFailed, "missing password"), true
	}
	// passwordField.Bytes is the scrambled wire form; account.Password is
	// stored scrambled too (db.seedDefaults, AccountStore.Create), so the
	// comparison stays in scrambled space rather than unscrambling either
	// side to plaintext.

	account, err := ctx.Accounts.Lookup(login)
	if err != nil {
		if err != db.ErrAccountNotFound {
			ctx.Logger.Error().Err(err).Msg("account lookup failed")
		}
		ctx.Logger.Warn().Str("login", login).Msg("login failed: unknown account")
		return protocol.ErrorReply(tx.ID, tx.Kind, protocol.ErrLoginFailed, ""), true
	}
	if !equalBytes(account.Password, passwordField.Bytes) {
		ctx.Logger.Warn().Str("login", login).Msg("login failed: bad password")
		return protocol.ErrorReply(tx.ID, tx.Kind, protocol.ErrLoginFailed, ""), true
	}

	accountID := uint32(account.ID)
	ctx.Session.SetAccountID(&accountID)
	ctx.Session.SetAccess(account.Access)
	ctx.Session.SetState(session.StateAgreeing)
	ctx.Logger.Info().Str("login", login).Msg("login succeeded")
	return loginReply(tx.ID, tx.Kind, cfg.ServerVersion, cfg.ServerName), true
}

// loginReply builds the unconditional 160/161/162 reply fields (spec.md
// §4.7: "sent unconditionally — in particular, not gated on client
// version").
func loginReply(id uint32, kind protocol.TransactionType, serverVersion uint16, serverName string) protocol.Transaction {
	return protocol.NewBuilder().
		Uint16(protocol.FieldVersion, serverVersion).
		Uint32(protocol.FieldBannerID, 0).
		String(protocol.FieldServerName, serverName).
		Reply(id, kind, protocol.ErrOk)
}

func equalBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
