package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxFieldSize is the largest byte length a single field's payload may
// declare, per spec.md §3 ("bytes: Vec<u8> with length ≤ 65535").
const MaxFieldSize = 65535

// ReadUint16 reads a big-endian uint16 from r.
func ReadUint16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("read uint16: %w", err)
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

// ReadUint32 reads a big-endian uint32 from r.
func ReadUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("read uint32: %w", err)
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// PutUint16 appends the big-endian encoding of v to buf.
func PutUint16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

// PutUint32 appends the big-endian encoding of v to buf.
func PutUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

// Uint16 decodes a big-endian uint16 from the front of b.
func Uint16(b []byte) uint16 { return binary.BigEndian.Uint16(b) }

// Uint32 decodes a big-endian uint32 from the front of b.
func Uint32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }

// Int16 decodes a big-endian, two's-complement int16 from the front of b.
func Int16(b []byte) int16 { return int16(binary.BigEndian.Uint16(b)) }

// PutInt16 appends the big-endian, two's-complement encoding of v to buf.
func PutInt16(buf []byte, v int16) []byte {
	return PutUint16(buf, uint16(v))
}
