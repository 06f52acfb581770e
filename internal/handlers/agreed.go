package handlers

import (
	"strings"

	"github.com/DaCodeChick/rhxd/internal/broadcast"
	"github.com/DaCodeChick/rhxd/internal/protocol"
	"github.com/DaCodeChick/rhxd/internal/session"
	"github.com/DaCodeChick/rhxd/internal/wire"
)

// maxNicknameBytes is the boundary spec.md §8 tests explicitly: 31 bytes
// accepted, 32 rejected.
const maxNicknameBytes = 31

// adminIconID is substituted for a client-supplied icon of 0 when the
// session holds DisconnectUser, matching the original's default
// administrator icon.
const adminIconID = 410

// handleAgreed implements Agreed (121): spec.md §4.7. On success the
// session transitions to Active, replies with an empty Agreed
// acknowledgement, and publishes UserJoined to the hub. Publishing an
// Event before Active is forbidden by spec.md §3's invariant, so the
// publish happens strictly after SetState.
func handleAgreed(ctx Context, tx protocol.Transaction) (protocol.Transaction, bool) {
	nameField, _ := protocol.First(tx.Fields, protocol.FieldUserName)
	nickname := strings.TrimSpace(string(nameField.Bytes))
	if nickname == "" {
		return protocol.ErrorReply(tx.ID, tx.Kind, protocol.ErrInvalidParameter, "empty nickname"), true
	}
	if len(nickname) > maxNicknameBytes {
		return protocol.ErrorReply(tx.ID, tx.Kind, protocol.ErrInvalidParameter, "nickname too long"), true
	}

	var iconID int16
	if f, ok := protocol.First(tx.Fields, protocol.FieldUserIconID); ok && len(f.Bytes) >= 2 {
		iconID = wire.Int16(f.Bytes)
	}
	var flags uint16
	if f, ok := protocol.First(tx.Fields, protocol.FieldOptions); ok && len(f.Bytes) >= 2 {
		flags = wire.Uint16(f.Bytes)
	}

	// Admin status is derived from access privileges, not taken from the
	// client: the admin bit of the client-supplied flags is cleared, so a
	// session can't grant itself the admin badge by setting the flag bit
	// itself (spec.md §3's access-is-server-owned invariant;
	// original_source/crates/rhxd/src/handlers/agreed.rs). An admin whose
	// client sends icon 0 gets adminIconID instead.
	flags &^= uint16(wire.FlagAdmin)
	if ctx.Session.GetAccess().Has(wire.AccessDisconnectUser) {
		flags |= uint16(wire.FlagAdmin)
		if iconID == 0 {
			iconID = adminIconID
		}
	}

	ctx.Session.SetNickname(nickname)
	ctx.Session.SetIconID(iconID)
	ctx.Session.SetFlags(flags)
	ctx.Session.SetState(session.StateActive)

	ctx.Hub.Publish(broadcast.Event{
		Type: broadcast.EventUserJoined,
		Payload: broadcast.UserJoinedPayload{
			UserID:   ctx.Session.UserID(),
			Nickname: nickname,
			IconID:   iconID,
			Flags:    flags,
			Access:   ctx.Session.GetAccess(),
		},
	})

	ctx.Logger.Info().Str("nickname", nickname).Msg("agreed, session active")
	return protocol.NewBuilder().Reply(tx.ID, tx.Kind, protocol.ErrOk), true
}
