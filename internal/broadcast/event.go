// Package broadcast implements the one-to-many delivery layer of
// spec.md §4.7/§5: it fans Event values out to every active session's
// outbound mailbox, applying the self-exclusion and backpressure rules
// the protocol's roster semantics depend on.
package broadcast

import "github.com/DaCodeChick/rhxd/internal/wire"

// EventType identifies which kind of roster or messaging event an
// Event carries.
type EventType string

const (
	EventUserJoined  EventType = "user_joined"
	EventUserChanged EventType = "user_changed"
	EventUserLeft    EventType = "user_left"
	EventChat        EventType = "chat"
	EventInstantMsg  EventType = "instant_msg"
	EventDisconnect  EventType = "disconnect"
)

// Event is a single value published to the hub (spec.md §3's Event
// sum type, represented here as a tagged payload the way the teacher's
// event system carries per-type payloads).
type Event struct {
	Type    EventType
	Payload interface{}
}

// UserJoinedPayload announces a session's arrival to the active roster.
type UserJoinedPayload struct {
	UserID   uint16
	Nickname string
	IconID   int16
	Flags    uint16
	Access   wire.AccessPrivileges
}

// UserChangedPayload announces a change to a session's roster-visible
// fields.
type UserChangedPayload struct {
	UserID   uint16
	Nickname string
	IconID   int16
	Flags    uint16
}

// UserLeftPayload announces a session's departure from the active
// roster.
type UserLeftPayload struct {
	UserID uint16
}

// ChatPayload carries a public chat message.
type ChatPayload struct {
	FromUserID   uint16
	FromNickname string
	Text         string
	Emote        bool
}

// InstantMsgPayload carries a private message delivered only to the
// named target session.
type InstantMsgPayload struct {
	FromUserID   uint16
	FromNickname string
	ToUserID     uint16
	Text         string
}

// DisconnectPayload is an administrative notice delivered only to the
// named target session before it is forced closed.
type DisconnectPayload struct {
	ToUserID uint16
	Reason   string
}
