package protocol

import "github.com/DaCodeChick/rhxd/internal/wire"

// Builder constructs a transaction's field list with a fluent, chainable
// API, mirroring the teacher's packet builder but appending typed Fields
// instead of raw byte runs.
type Builder struct {
	fields []Field
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Field appends a raw field.
func (b *Builder) Field(id FieldID, data []byte) *Builder {
	b.fields = append(b.fields, Field{ID: id, Bytes: data})
	return b
}

// Uint16 appends a 2-byte big-endian field.
func (b *Builder) Uint16(id FieldID, v uint16) *Builder {
	return b.Field(id, wire.PutUint16(nil, v))
}

// Uint32 appends a 4-byte big-endian field.
func (b *Builder) Uint32(id FieldID, v uint32) *Builder {
	return b.Field(id, wire.PutUint32(nil, v))
}

// Int16 appends a 2-byte big-endian signed field.
func (b *Builder) Int16(id FieldID, v int16) *Builder {
	return b.Field(id, wire.PutInt16(nil, v))
}

// String appends a field holding s's raw bytes.
func (b *Builder) String(id FieldID, s string) *Builder {
	return b.Field(id, []byte(s))
}

// Fields returns the accumulated field list.
func (b *Builder) Fields() []Field {
	return b.fields
}

// Reply builds a reply Transaction for the given request kind and id and
// error code, carrying the accumulated fields. A reply carries the
// request's own kind on the wire, not a distinct "reply" kind, matching
// the original implementation's transaction_type: request.transaction_type
// (see DESIGN.md).
func (b *Builder) Reply(id uint32, kind TransactionType, errorCode ErrorCode) Transaction {
	return Transaction{
		IsReply:   true,
		Kind:      kind,
		ID:        id,
		ErrorCode: errorCode,
		Fields:    b.fields,
	}
}

// Notification builds a server-initiated (non-reply) Transaction of the
// given kind, carrying the accumulated fields. Notifications use id 0 per
// spec.md §4.5 since they are not replies to any client request; the
// framing layer's id != 0 rejection in ReadHeader applies only to
// inbound, client-originated headers.
func (b *Builder) Notification(kind TransactionType) Transaction {
	return Transaction{
		IsReply: false,
		Kind:    kind,
		ID:      0,
		Fields:  b.fields,
	}
}

// ErrorReply builds a bare error reply carrying an ErrorString field when
// msg is non-empty, per spec.md §7.
func ErrorReply(id uint32, kind TransactionType, code ErrorCode, msg string) Transaction {
	b := NewBuilder()
	if msg != "" {
		b.String(FieldErrorString, msg)
	}
	return b.Reply(id, kind, code)
}
