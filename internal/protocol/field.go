package protocol

import (
	"fmt"

	"github.com/DaCodeChick/rhxd/internal/wire"
)

// Field is a single (id, bytes) pair inside a transaction's field table.
// Interpretation of Bytes is determined entirely by ID, per spec.md §3.
type Field struct {
	ID    FieldID
	Bytes []byte
}

// fieldHeaderSize is the on-wire size of a field's id+size header, per
// spec.md §4.2: id (u16 BE) | size (u16 BE) | bytes[size].
const fieldHeaderSize = 4

// DecodeFields parses the field table out of a transaction's already-read
// payload slice. count is the field_count read from the payload's own
// 2-byte prefix. It rejects any field whose declared size claims more
// bytes than remain in payload, per spec.md §4.2's framing rule.
func DecodeFields(payload []byte, count int) ([]Field, error) {
	fields := make([]Field, 0, count)
	off := 0
	for i := 0; i < count; i++ {
		if off+fieldHeaderSize > len(payload) {
			return nil, fmt.Errorf("field %d header: framing error: %d bytes remain, need %d", i, len(payload)-off, fieldHeaderSize)
		}
		id := FieldID(wire.Uint16(payload[off:]))
		size := int(wire.Uint16(payload[off+2:]))
		off += fieldHeaderSize

		if off+size > len(payload) {
			return nil, fmt.Errorf("field %d body: framing error: size %d claims more than the %d bytes remaining", i, size, len(payload)-off)
		}

		body := make([]byte, size)
		copy(body, payload[off:off+size])
		off += size

		fields = append(fields, Field{ID: id, Bytes: body})
	}
	return fields, nil
}

// EncodeFields appends the wire encoding of fields (field_count prefix
// followed by each field's id|size|bytes) to buf and returns the result.
func EncodeFields(buf []byte, fields []Field) []byte {
	buf = wire.PutUint16(buf, uint16(len(fields)))
	for _, f := range fields {
		buf = wire.PutUint16(buf, uint16(f.ID))
		buf = wire.PutUint16(buf, uint16(len(f.Bytes)))
		buf = append(buf, f.Bytes...)
	}
	return buf
}

// EncodedSize returns the number of bytes fields occupies on the wire,
// including the 2-byte field_count prefix.
func EncodedSize(fields []Field) int {
	n := 2
	for _, f := range fields {
		n += fieldHeaderSize + len(f.Bytes)
	}
	return n
}

// First returns the first field with the given id, matching spec.md §3's
// "the reader takes the first occurrence" rule for fields where duplicates
// are permitted.
func First(fields []Field, id FieldID) (Field, bool) {
	for _, f := range fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}
