// Package wire implements the low-level byte encodings shared by the
// Hotline Connect field and transaction codecs: big-endian integers and
// the endianness-dependent access-privilege bitfield.
package wire

import (
	"encoding/binary"
	"math/bits"
)

// AccessPrivileges is the 64-bit permission bitfield whose wire form is
// field 110 (UserAccess). Each session holds one, set at login and
// consulted by handlers such as GetClientInfoText.
type AccessPrivileges uint64

// Recognized privilege bits, named in order from bit 0; unnamed higher
// bits round-trip transparently.
const (
	AccessDeleteFiles AccessPrivileges = 1 << iota
	AccessUploadFiles
	AccessDownloadFiles
	AccessRenameFiles
	AccessMoveFiles
	AccessCreateFolders
	AccessDeleteFolders
	AccessRenameFolders
	AccessMoveFolders
	AccessReadChat
	AccessSendChat
	AccessOpenChat
	AccessCloseChat
	AccessShowInList
	AccessCreateUser
	AccessDeleteUser
	AccessOpenUser
	AccessModifyUser
	AccessNewsReadArticle
	AccessNewsPostArticle
	AccessDisconnectUser
	AccessCannotBeDiscon
	AccessGetClientInfo
	AccessUploadAnywhere
	AccessAnyName
	AccessNoAgreement
	AccessSetFileComment
	AccessSetFolderComment
	AccessViewDropBoxes
	AccessMakeAlias
	AccessBroadcast
	AccessNewsDeleteArt
	AccessNewsCreateCat
	AccessNewsDeleteCat
	AccessNewsCreateFldr
	AccessNewsDeleteFldr
)

// Has reports whether all bits set in flag are also set in p.
func (p AccessPrivileges) Has(flag AccessPrivileges) bool {
	return p&flag == flag
}

// ToWire encodes p as the 8-byte host-order representation described in
// spec.md §4.1: native byte order on big-endian hosts, native byte order
// with each byte's bits reversed on little-endian hosts. This quirk mirrors
// the historical C bitfield layout of the reference server and must be
// preserved exactly for wire compatibility.
func ToWire(p AccessPrivileges) [8]byte {
	var out [8]byte
	if isBigEndianHost() {
		for i := 0; i < 8; i++ {
			out[i] = byte(p >> uint(8*(7-i)))
		}
		return out
	}
	for i := 0; i < 8; i++ {
		out[i] = bits.Reverse8(byte(p >> uint(8*i)))
	}
	return out
}

// FromWire decodes the 8-byte wire representation back into an
// AccessPrivileges value. It is the exact inverse of ToWire on the same
// host: FromWire(ToWire(x)) == x always holds regardless of host
// endianness.
func FromWire(b [8]byte) AccessPrivileges {
	var p AccessPrivileges
	if isBigEndianHost() {
		for i := 0; i < 8; i++ {
			p |= AccessPrivileges(b[i]) << uint(8*(7-i))
		}
		return p
	}
	for i := 0; i < 8; i++ {
		p |= AccessPrivileges(bits.Reverse8(b[i])) << uint(8*i)
	}
	return p
}

// UserFlags is the 16-bit status bitfield carried in field 112 (UserFlags)
// and roster entries.
type UserFlags uint16

// Recognized status bits.
const (
	FlagAway UserFlags = 1 << iota
	FlagAdmin
	FlagRefusedMessages
	FlagRefusedChat
)

// isBigEndianHost reports the host's native byte order without relying on
// build tags, so the reversal logic in ToWire/FromWire stays testable on
// any platform.
func isBigEndianHost() bool {
	var buf [2]byte
	binary.NativeEndian.PutUint16(buf[:], 1)
	return buf[0] == 0
}
