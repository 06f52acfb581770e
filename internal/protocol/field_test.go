package protocol

import (
	"reflect"
	"testing"

	"github.com/DaCodeChick/rhxd/internal/wire"
)

func TestFieldRoundTrip(t *testing.T) {
	fields := []Field{
		{ID: FieldUserName, Bytes: []byte("Alice")},
		{ID: FieldUserID, Bytes: []byte{0x00, 0x07}},
		{ID: FieldData, Bytes: []byte("hi")},
	}

	encoded := EncodeFields(nil, fields)
	if len(encoded) != EncodedSize(fields) {
		t.Fatalf("EncodedSize = %d, len(encoded) = %d", EncodedSize(fields), len(encoded))
	}

	count := int(wire.Uint16(encoded))
	if count != len(fields) {
		t.Fatalf("field_count = %d, want %d", count, len(fields))
	}

	got, err := DecodeFields(encoded[2:], count)
	if err != nil {
		t.Fatalf("DecodeFields: %v", err)
	}
	if !reflect.DeepEqual(got, fields) {
		t.Errorf("DecodeFields round trip = %+v, want %+v", got, fields)
	}
}

func TestDecodeFieldsFramingErrors(t *testing.T) {
	// Header claims a field but there aren't enough bytes for it.
	if _, err := DecodeFields([]byte{0x00, 0x65, 0x00}, 1); err == nil {
		t.Errorf("expected framing error for truncated field header")
	}
	// Header is fine but declared size overruns the remaining payload.
	payload := []byte{0x00, 0x65, 0x00, 0x0A, 'h', 'i'}
	if _, err := DecodeFields(payload, 1); err == nil {
		t.Errorf("expected framing error for oversized field body")
	}
}

func TestFieldFirstOccurrence(t *testing.T) {
	fields := []Field{
		{ID: FieldUserName, Bytes: []byte("first")},
		{ID: FieldUserName, Bytes: []byte("second")},
	}
	f, ok := First(fields, FieldUserName)
	if !ok || string(f.Bytes) != "first" {
		t.Errorf("First = %+v, %v, want first occurrence", f, ok)
	}
	if _, ok := First(fields, FieldChatID); ok {
		t.Errorf("First found a field id that isn't present")
	}
}
