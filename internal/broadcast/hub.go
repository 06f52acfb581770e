package broadcast

import (
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/DaCodeChick/rhxd/internal/protocol"
	"github.com/DaCodeChick/rhxd/internal/session"
	"github.com/DaCodeChick/rhxd/internal/util"
)

// Hub fans Event values out to every active session's outbound
// mailbox by iterating the registry under a shared read lock (spec.md
// §5: "the broadcast hub owns no session state; it fans out by
// iterating the registry ... never calling back into handlers").
type Hub struct {
	registry *session.Registry
	logger   zerolog.Logger

	chatDropped uint64
}

// NewHub creates a Hub that delivers into registry's sessions.
func NewHub(registry *session.Registry) *Hub {
	return &Hub{
		registry: registry,
		logger:   util.ComponentLogger("broadcast"),
	}
}

// ChatDropped returns the count of Chat events dropped because a
// session's mailbox was full, for telemetry.
func (h *Hub) ChatDropped() uint64 {
	return atomic.LoadUint64(&h.chatDropped)
}

// Publish delivers ev to every applicable session per the filter rules
// of spec.md §4.7's broadcast delivery table.
func (h *Hub) Publish(ev Event) {
	switch p := ev.Payload.(type) {
	case UserJoinedPayload:
		h.publishRoster(p.UserID, notifyChangeUser(p.UserID, p.Nickname, p.IconID, p.Flags))
	case UserChangedPayload:
		h.publishToAll(notifyChangeUser(p.UserID, p.Nickname, p.IconID, p.Flags))
	case UserLeftPayload:
		h.publishRoster(p.UserID, notifyDeleteUser(p.UserID))
	case ChatPayload:
		h.publishChat(chatMessage(p.FromUserID, p.FromNickname, p.Text, p.Emote))
	case InstantMsgPayload:
		h.publishTo(p.ToUserID, serverMessage(p.FromUserID, p.FromNickname, p.Text))
	case DisconnectPayload:
		h.publishTo(p.ToUserID, disconnectMsg(p.Reason))
	default:
		h.logger.Warn().Str("event", string(ev.Type)).Msg("unknown event payload")
	}
}

// publishRoster delivers a roster-affecting notification (join/leave)
// to every active session except the subject, per spec.md §4.7's self-
// exclusion rule. Sessions still handshaking or logging in never see
// roster traffic. Roster events must never be silently dropped: a
// session whose mailbox is full is transitioned to Closing instead
// (spec.md §5).
func (h *Hub) publishRoster(subjectID uint16, tx protocol.Transaction) {
	h.registry.Each(func(s *session.Session) {
		if s.UserID() == subjectID || s.GetState() != session.StateActive {
			return
		}
		if !s.Enqueue(tx) {
			h.logger.Warn().Uint16("user_id", s.UserID()).Msg("roster mailbox full, closing session")
			s.SetState(session.StateClosing)
		}
	})
}

// publishToAll delivers tx to every active session, applying the same
// never-drop policy as publishRoster (UserChanged has no self-exclusion
// per spec.md §4.7's table).
func (h *Hub) publishToAll(tx protocol.Transaction) {
	h.registry.Each(func(s *session.Session) {
		if s.GetState() != session.StateActive {
			return
		}
		if !s.Enqueue(tx) {
			h.logger.Warn().Uint16("user_id", s.UserID()).Msg("roster mailbox full, closing session")
			s.SetState(session.StateClosing)
		}
	})
}

// publishChat delivers tx to every active session including the
// sender. A full mailbox drops the Chat event for that session only
// and is counted, never forcing closure (spec.md §5's backpressure
// policy).
func (h *Hub) publishChat(tx protocol.Transaction) {
	h.registry.Each(func(s *session.Session) {
		if s.GetState() != session.StateActive {
			return
		}
		if !s.Enqueue(tx) {
			atomic.AddUint64(&h.chatDropped, 1)
			h.logger.Debug().Uint16("user_id", s.UserID()).Msg("chat dropped, mailbox full")
		}
	})
}

// publishTo delivers tx only to the named target session, for
// InstantMsg and Disconnect events. Disconnect is delivered regardless
// of state since it targets sessions being torn down mid-handshake as
// well as active ones; InstantMsg targets are always active in
// practice since only active sessions appear in the roster a client
// could have addressed.
func (h *Hub) publishTo(targetID uint16, tx protocol.Transaction) {
	s, ok := h.registry.GetSession(targetID)
	if !ok {
		return
	}
	if !s.Enqueue(tx) {
		h.logger.Warn().Uint16("user_id", targetID).Msg("targeted message dropped, mailbox full")
	}
}

func notifyChangeUser(userID uint16, nickname string, iconID int16, flags uint16) protocol.Transaction {
	return protocol.NewBuilder().
		Uint16(protocol.FieldUserID, userID).
		String(protocol.FieldUserName, nickname).
		Int16(protocol.FieldUserIconID, iconID).
		Uint16(protocol.FieldUserFlags, flags).
		Notification(protocol.TranNotifyChangeUser)
}

func notifyDeleteUser(userID uint16) protocol.Transaction {
	return protocol.NewBuilder().
		Uint16(protocol.FieldUserID, userID).
		Notification(protocol.TranNotifyDeleteUser)
}

func chatMessage(fromUserID uint16, fromNickname, text string, emote bool) protocol.Transaction {
	b := protocol.NewBuilder().
		String(protocol.FieldData, text).
		Uint16(protocol.FieldUserID, fromUserID).
		String(protocol.FieldUserName, fromNickname)
	if emote {
		b.Uint16(protocol.FieldChatOptions, 1)
	}
	return b.Notification(protocol.TranChatMessage)
}

func serverMessage(fromUserID uint16, fromNickname, text string) protocol.Transaction {
	return protocol.NewBuilder().
		String(protocol.FieldData, text).
		Uint16(protocol.FieldUserID, fromUserID).
		String(protocol.FieldUserName, fromNickname).
		Notification(protocol.TranServerMessage)
}

func disconnectMsg(reason string) protocol.Transaction {
	return protocol.NewBuilder().
		String(protocol.FieldData, reason).
		Notification(protocol.TranDisconnectMsg)
}
