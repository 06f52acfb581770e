package protocol

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/DaCodeChick/rhxd/internal/wire"
)

// HeaderSize is the fixed 20-byte transaction header size, per spec.md
// §4.3.
const HeaderSize = 20

// Header is the fixed-size prefix of every transaction on the wire.
type Header struct {
	Flags     byte
	IsReply   bool
	Kind      TransactionType
	ID        uint32
	ErrorCode ErrorCode
	TotalSize uint32
	DataSize  uint32
}

// Transaction is the fully reassembled, decoded unit of protocol exchange
// (spec.md §3). It always represents a complete, single logical message
// even when it arrived over the wire as several parts.
type Transaction struct {
	IsReply   bool
	Kind      TransactionType
	ID        uint32
	ErrorCode ErrorCode
	Fields    []Field
}

// ReadHeader reads and validates the 20-byte transaction header. An id of
// zero, or data_size exceeding total_size, is a framing error per spec.md
// §4.3 and is fatal to the connection (never reported over the protocol).
func ReadHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, fmt.Errorf("read transaction header: %w", err)
	}

	h := Header{
		Flags:     buf[0],
		IsReply:   buf[1] != 0,
		Kind:      TransactionType(binary.BigEndian.Uint16(buf[2:4])),
		ID:        binary.BigEndian.Uint32(buf[4:8]),
		ErrorCode: ErrorCode(binary.BigEndian.Uint32(buf[8:12])),
		TotalSize: binary.BigEndian.Uint32(buf[12:16]),
		DataSize:  binary.BigEndian.Uint32(buf[16:20]),
	}

	if h.ID == 0 {
		return Header{}, fmt.Errorf("framing error: transaction id is zero")
	}
	if h.DataSize > h.TotalSize {
		return Header{}, fmt.Errorf("framing error: data_size %d exceeds total_size %d", h.DataSize, h.TotalSize)
	}
	return h, nil
}

// ReadPart reads one transaction header and its data_size payload bytes
// (the raw, not-yet-field-parsed part body) from r.
func ReadPart(r io.Reader) (Header, []byte, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return Header{}, nil, err
	}
	if h.DataSize == 0 {
		return h, nil, nil
	}
	data := make([]byte, h.DataSize)
	if _, err := io.ReadFull(r, data); err != nil {
		return Header{}, nil, fmt.Errorf("read transaction payload (%d bytes): %w", h.DataSize, err)
	}
	return h, data, nil
}

// Reassembler accumulates multi-part transaction payloads by id, per
// spec.md §4.3/§9: total_size reserves space for fragmentation; the MVP
// only emits single-part output but must correctly parse multi-part
// input.
type Reassembler struct {
	parts map[uint32]*partial
}

type partial struct {
	header Header
	buf    []byte
}

// NewReassembler creates an empty Reassembler.
func NewReassembler() *Reassembler {
	return &Reassembler{parts: make(map[uint32]*partial)}
}

// Feed adds one part to the reassembly buffer for its transaction id. It
// returns the completed Transaction once total_size bytes have been
// accumulated for that id, or ok == false if more parts are still
// expected.
func (r *Reassembler) Feed(h Header, data []byte) (tx Transaction, ok bool, err error) {
	p, exists := r.parts[h.ID]
	if !exists {
		p = &partial{header: h}
		r.parts[h.ID] = p
	}
	p.buf = append(p.buf, data...)

	if uint32(len(p.buf)) < p.header.TotalSize {
		return Transaction{}, false, nil
	}
	if uint32(len(p.buf)) > p.header.TotalSize {
		delete(r.parts, h.ID)
		return Transaction{}, false, fmt.Errorf("framing error: reassembled payload for transaction %d exceeds declared total_size", h.ID)
	}

	delete(r.parts, h.ID)

	fields, err := decodeFieldTable(p.buf)
	if err != nil {
		return Transaction{}, false, err
	}

	return Transaction{
		IsReply:   p.header.IsReply,
		Kind:      p.header.Kind,
		ID:        p.header.ID,
		ErrorCode: p.header.ErrorCode,
		Fields:    fields,
	}, true, nil
}

// decodeFieldTable parses a complete (reassembled) payload: a 2-byte
// field_count prefix followed by that many fields, per spec.md §4.3.
func decodeFieldTable(payload []byte) ([]Field, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	if len(payload) < 2 {
		return nil, fmt.Errorf("framing error: payload too short for field_count")
	}
	count := int(wire.Uint16(payload))
	return DecodeFields(payload[2:], count)
}

// DecodeTransaction reads exactly one complete, single-part transaction
// from r. It is a convenience wrapper over ReadPart for the common case
// (data_size == total_size); callers that must tolerate multi-part input
// should drive ReadPart and a Reassembler directly.
func DecodeTransaction(r io.Reader) (Transaction, error) {
	h, data, err := ReadPart(r)
	if err != nil {
		return Transaction{}, err
	}
	if h.DataSize != h.TotalSize {
		return Transaction{}, fmt.Errorf("multi-part transaction %d requires a Reassembler", h.ID)
	}
	fields, err := decodeFieldTable(data)
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{
		IsReply:   h.IsReply,
		Kind:      h.Kind,
		ID:        h.ID,
		ErrorCode: h.ErrorCode,
		Fields:    fields,
	}, nil
}

// Encode serializes tx as a single-part transaction (data_size ==
// total_size), per spec.md §4.3's writer contract.
func (tx Transaction) Encode() []byte {
	fieldBytes := EncodeFields(nil, tx.Fields)
	size := uint32(len(fieldBytes))

	buf := make([]byte, 0, HeaderSize+len(fieldBytes))
	buf = append(buf, 0) // flags, reserved
	if tx.IsReply {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = wire.PutUint16(buf, uint16(tx.Kind))
	buf = wire.PutUint32(buf, tx.ID)
	buf = wire.PutUint32(buf, uint32(tx.ErrorCode))
	buf = wire.PutUint32(buf, size)
	buf = wire.PutUint32(buf, size)
	buf = append(buf, fieldBytes...)
	return buf
}

// WriteTransaction encodes and writes tx to w as a single, atomic write
// per spec.md §4.3's "outbound writes are atomic per transaction" writer
// contract.
func WriteTransaction(w io.Writer, tx Transaction) error {
	if _, err := w.Write(tx.Encode()); err != nil {
		return fmt.Errorf("write transaction %d: %w", tx.ID, err)
	}
	return nil
}
