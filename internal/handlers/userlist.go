package handlers

import (
	"github.com/DaCodeChick/rhxd/internal/protocol"
	"github.com/DaCodeChick/rhxd/internal/session"
	"github.com/DaCodeChick/rhxd/internal/wire"
)

// handleGetUserNameList implements GetUserNameList (300): spec.md §4.7.
// The reply carries one packed UserNameWithInfo field per active
// session: user_id(u16 BE) | icon_id(i16 BE) | flags(u16 BE) |
// name_len(u16 BE) | name_bytes. Order is unspecified but stable within
// one reply.
func handleGetUserNameList(ctx Context, tx protocol.Transaction) (protocol.Transaction, bool) {
	snapshot := ctx.Registry.Snapshot()

	b := protocol.NewBuilder()
	for _, s := range snapshot {
		if s.State != session.StateActive {
			continue
		}
		b.Field(protocol.FieldUserNameWithInfo, encodeUserNameWithInfo(s))
	}
	return b.Reply(tx.ID, tx.Kind, protocol.ErrOk), true
}

func encodeUserNameWithInfo(s session.Summary) []byte {
	buf := wire.PutUint16(nil, s.UserID)
	buf = wire.PutInt16(buf, s.IconID)
	buf = wire.PutUint16(buf, s.Flags)
	buf = wire.PutUint16(buf, uint16(len(s.Nickname)))
	buf = append(buf, s.Nickname...)
	return buf
}
