package handlers

import (
	"fmt"
	"net"

	"github.com/DaCodeChick/rhxd/internal/protocol"
	"github.com/DaCodeChick/rhxd/internal/wire"
)

// handleGetClientInfoText implements GetClientInfoText (303): spec.md
// §4.7. It requires AccessGetClientInfo on the requesting session, takes
// the target user id in field 103, and replies with a formatted
// multi-line info block (field 101), the target's nickname (field 102),
// and the target's icon id rendered as ASCII digits (field 104).
func handleGetClientInfoText(ctx Context, tx protocol.Transaction) (protocol.Transaction, bool) {
	if !ctx.Session.GetAccess().Has(wire.AccessGetClientInfo) {
		return protocol.ErrorReply(tx.ID, tx.Kind, protocol.ErrPermissionDenied, ""), true
	}

	targetField, ok := protocol.First(tx.Fields, protocol.FieldUserID)
	if !ok || len(targetField.Bytes) < 2 {
		return protocol.ErrorReply(tx.ID, tx.Kind, protocol.ErrNotFound, ""), true
	}
	targetID := wire.Uint16(targetField.Bytes)

	target, ok := ctx.Registry.Get(targetID)
	if !ok {
		return protocol.ErrorReply(tx.ID, tx.Kind, protocol.ErrNotFound, ""), true
	}

	accountName, accountLogin := "Guest", "Guest"
	if target.AccountID != nil {
		if account, err := ctx.Accounts.GetByID(int64(*target.AccountID)); err == nil {
			accountName, accountLogin = account.Name, account.Login
		} else {
			accountName, accountLogin = "Unknown", "Unknown"
		}
	}

	address := "unknown"
	if target.Addr != nil {
		if host, _, err := net.SplitHostPort(target.Addr.String()); err == nil {
			address = host
		} else {
			address = target.Addr.String()
		}
	}

	awayMin, awaySec := 0, 0
	info := fmt.Sprintf(
		"Nickname:  %s\nUserId:  %d\nIcon:  %d\nAway:  %d min %d sec\nName:  %s\nAccount:  %s\nAddress:  %s\n",
		target.Nickname, target.UserID, target.IconID, awayMin, awaySec, accountName, accountLogin, address,
	)

	return protocol.NewBuilder().
		String(protocol.FieldData, info).
		String(protocol.FieldUserName, target.Nickname).
		String(protocol.FieldUserIconID, fmt.Sprintf("%d", target.IconID)).
		Reply(tx.ID, tx.Kind, protocol.ErrOk), true
}
