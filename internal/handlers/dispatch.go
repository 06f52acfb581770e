package handlers

import (
	"github.com/DaCodeChick/rhxd/internal/protocol"
	"github.com/DaCodeChick/rhxd/internal/session"
)

// Handler processes one decoded transaction and returns the reply to
// send, if any. hasReply == false means no reply is sent (spec.md §4.7:
// SendChat and SendInstantMsg reply with nothing, the hub delivery is
// the response).
type Handler func(ctx Context, tx protocol.Transaction) (reply protocol.Transaction, hasReply bool)

var handlerTable = map[protocol.TransactionType]Handler{
	protocol.TranLogin:             handleLogin,
	protocol.TranAgreed:            handleAgreed,
	protocol.TranSendChat:          handleSendChat,
	protocol.TranSendInstantMsg:    handleSendInstantMsg,
	protocol.TranGetUserNameList:   handleGetUserNameList,
	protocol.TranGetClientInfoText: handleGetClientInfoText,
	protocol.TranGetFileNameList:   handleGetFileNameList,
}

// Dispatch enforces the pre-Active ordering rules of spec.md §4.6 and
// routes the transaction to its handler. In states before Active,
// receiving any kind other than the state's single expected next kind
// yields an InvalidState error reply and the state machine does not
// advance.
func Dispatch(ctx Context, tx protocol.Transaction) (reply protocol.Transaction, hasReply bool) {
	state := ctx.Session.GetState()

	switch state {
	case session.StateHandshaking:
		return protocol.ErrorReply(tx.ID, tx.Kind, protocol.ErrInvalidState, "handshake not complete"), true
	case session.StateLoggedIn:
		if tx.Kind != protocol.TranLogin {
			return protocol.ErrorReply(tx.ID, tx.Kind, protocol.ErrInvalidState, "expected Login"), true
		}
	case session.StateAgreeing:
		if tx.Kind != protocol.TranAgreed {
			return protocol.ErrorReply(tx.ID, tx.Kind, protocol.ErrInvalidState, "expected Agreed"), true
		}
	case session.StateClosing:
		return protocol.Transaction{}, false
	}

	h, ok := handlerTable[tx.Kind]
	if !ok {
		ctx.Logger.Debug().Stringer("kind", tx.Kind).Msg("no handler for transaction kind")
		return protocol.ErrorReply(tx.ID, tx.Kind, protocol.ErrNotImplemented, ""), true
	}
	return h(ctx, tx)
}
