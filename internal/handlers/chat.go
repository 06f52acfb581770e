package handlers

import (
	"github.com/DaCodeChick/rhxd/internal/broadcast"
	"github.com/DaCodeChick/rhxd/internal/protocol"
)

// handleSendChat implements SendChat (105): spec.md §4.7. It publishes a
// Chat event and sends no direct reply; the hub's fan-out (which
// includes the sender) is the response. Field 114 ChatId is reserved
// for chat rooms, a deferred feature: its presence is rejected with
// NotImplemented per spec.md's explicit MVP note.
func handleSendChat(ctx Context, tx protocol.Transaction) (protocol.Transaction, bool) {
	if _, hasChatID := protocol.First(tx.Fields, protocol.FieldChatID); hasChatID {
		return protocol.ErrorReply(tx.ID, tx.Kind, protocol.ErrNotImplemented, "chat rooms not implemented"), true
	}

	dataField, _ := protocol.First(tx.Fields, protocol.FieldData)
	emote := false
	if f, ok := protocol.First(tx.Fields, protocol.FieldChatOptions); ok && len(f.Bytes) >= 2 {
		emote = f.Bytes[1] == 1
	}

	ctx.Hub.Publish(broadcast.Event{
		Type: broadcast.EventChat,
		Payload: broadcast.ChatPayload{
			FromUserID:   ctx.Session.UserID(),
			FromNickname: ctx.Session.GetNickname(),
			Text:         string(dataField.Bytes),
			Emote:        emote,
		},
	})
	return protocol.Transaction{}, false
}
