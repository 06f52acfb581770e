package handlers

import (
	"github.com/DaCodeChick/rhxd/internal/broadcast"
	"github.com/DaCodeChick/rhxd/internal/protocol"
	"github.com/DaCodeChick/rhxd/internal/wire"
)

// handleSendInstantMsg implements SendInstantMsg (108): spec.md §4.7.
// The hub delivers only to the target session; the sender gets no
// reply.
func handleSendInstantMsg(ctx Context, tx protocol.Transaction) (protocol.Transaction, bool) {
	targetField, ok := protocol.First(tx.Fields, protocol.FieldUserID)
	if !ok || len(targetField.Bytes) < 2 {
		return protocol.Transaction{}, false
	}
	dataField, _ := protocol.First(tx.Fields, protocol.FieldData)

	ctx.Hub.Publish(broadcast.Event{
		Type: broadcast.EventInstantMsg,
		Payload: broadcast.InstantMsgPayload{
			FromUserID:   ctx.Session.UserID(),
			FromNickname: ctx.Session.GetNickname(),
			ToUserID:     wire.Uint16(targetField.Bytes),
			Text:         string(dataField.Bytes),
		},
	})
	return protocol.Transaction{}, false
}
