package protocol

import (
	"bytes"
	"testing"
)

// TestHandshakeSuccess exercises spec.md §8 scenario 1's exact byte
// vectors: client preamble "TRTPHOTL\x00\x01\x00\x02", server reply
// "TRTP\x00\x00\x00\x00".
func TestHandshakeSuccess(t *testing.T) {
	req := []byte{0x54, 0x52, 0x54, 0x50, 0x48, 0x4F, 0x54, 0x4C, 0x00, 0x01, 0x00, 0x02}
	h, err := ReadHandshake(bytes.NewReader(req))
	if err != nil {
		t.Fatalf("ReadHandshake: %v", err)
	}
	if !h.Valid() {
		t.Fatalf("expected valid handshake, got %+v", h)
	}
	if h.SubProtocol != [4]byte{'H', 'O', 'T', 'L'} {
		t.Errorf("SubProtocol = %q, want HOTL", h.SubProtocol)
	}
	if h.Version != 1 || h.SubVersion != 2 {
		t.Errorf("Version/SubVersion = %d/%d, want 1/2", h.Version, h.SubVersion)
	}

	want := []byte{0x54, 0x52, 0x54, 0x50, 0x00, 0x00, 0x00, 0x00}
	got := EncodeHandshakeReply(0)
	if !bytes.Equal(got, want) {
		t.Errorf("EncodeHandshakeReply(0) = %x, want %x", got, want)
	}
}

func TestHandshakeInvalidMagic(t *testing.T) {
	req := []byte{0, 0, 0, 0, 'H', 'O', 'T', 'L', 0, 1, 0, 2}
	h, err := ReadHandshake(bytes.NewReader(req))
	if err != nil {
		t.Fatalf("ReadHandshake: %v", err)
	}
	if h.Valid() {
		t.Errorf("expected invalid handshake for garbled magic")
	}
}

func TestHandshakeShortRead(t *testing.T) {
	if _, err := ReadHandshake(bytes.NewReader([]byte{1, 2, 3})); err == nil {
		t.Fatalf("expected error on short handshake read")
	}
}
