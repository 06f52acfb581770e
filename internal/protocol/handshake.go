package protocol

import (
	"bytes"
	"fmt"
	"io"

	"github.com/DaCodeChick/rhxd/internal/wire"
)

// trtpMagic is the four-byte ASCII magic that opens every Hotline Connect
// connection, per spec.md §4.4/§6.
var trtpMagic = [4]byte{'T', 'R', 'T', 'P'}

// HandshakeSize is the fixed size of the client preamble.
const HandshakeSize = 12

// Handshake is the parsed 12-byte client preamble: magic, sub-protocol,
// version, sub-version, per spec.md §4.4.
type Handshake struct {
	Magic       [4]byte
	SubProtocol [4]byte
	Version     uint16
	SubVersion  uint16
}

// Valid reports whether the handshake's magic matches the required "TRTP"
// preamble.
func (h Handshake) Valid() bool {
	return h.Magic == trtpMagic
}

// ReadHandshake reads exactly 12 bytes from r and parses them as a client
// handshake preamble. No transactions may be exchanged before this
// completes, per spec.md §4.4.
func ReadHandshake(r io.Reader) (Handshake, error) {
	var buf [HandshakeSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Handshake{}, fmt.Errorf("read handshake preamble: %w", err)
	}

	var h Handshake
	copy(h.Magic[:], buf[0:4])
	copy(h.SubProtocol[:], buf[4:8])
	h.Version = wire.Uint16(buf[8:10])
	h.SubVersion = wire.Uint16(buf[10:12])
	return h, nil
}

// WriteHandshakeReply writes the 8-byte server reply: "TRTP" followed by
// a 4-byte big-endian error code (0 on success), per spec.md §4.4/§6.
func WriteHandshakeReply(w io.Writer, errorCode uint32) error {
	buf := make([]byte, 0, 8)
	buf = append(buf, trtpMagic[:]...)
	buf = wire.PutUint32(buf, errorCode)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write handshake reply: %w", err)
	}
	return nil
}

// EncodeHandshakeReply returns the raw bytes WriteHandshakeReply would
// send, for tests that want to assert on the exact byte sequence rather
// than drive an io.Writer.
func EncodeHandshakeReply(errorCode uint32) []byte {
	var b bytes.Buffer
	_ = WriteHandshakeReply(&b, errorCode)
	return b.Bytes()
}
