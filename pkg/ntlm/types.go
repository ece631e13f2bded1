// Package ntlm decodes and rewrites NTLMSSP messages produced by the local
// security provider and renders captured responses as crackable hash lines.
package ntlm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/ineffectivecoder/gomonologue/internal/encoding"
)

// NTLM message signatures and types
var ntlmSignature = [8]byte{'N', 'T', 'L', 'M', 'S', 'S', 'P', 0}

const (
	NtLmNegotiate    = 0x00000001 // Type 1
	NtLmChallenge    = 0x00000002 // Type 2
	NtLmAuthenticate = 0x00000003 // Type 3
)

// NTLMSSP negotiate flags
const (
	NtlmsspNegotiateUnicode                 uint32 = 0x00000001
	NtlmsspNegotiateOEM                     uint32 = 0x00000002
	NtlmsspRequestTarget                    uint32 = 0x00000004
	NtlmsspNegotiateSign                    uint32 = 0x00000010
	NtlmsspNegotiateSeal                    uint32 = 0x00000020
	NtlmsspNegotiateDatagram                uint32 = 0x00000040
	NtlmsspNegotiateLmKey                   uint32 = 0x00000080
	NtlmsspNegotiateNTLM                    uint32 = 0x00000200
	NtlmsspNegotiateAnonymous               uint32 = 0x00000800
	NtlmsspNegotiateOEMDomainSupplied       uint32 = 0x00001000
	NtlmsspNegotiateOEMWorkstationSupplied  uint32 = 0x00002000
	NtlmsspNegotiateAlwaysSign              uint32 = 0x00008000
	NtlmsspTargetTypeDomain                 uint32 = 0x00010000
	NtlmsspTargetTypeServer                 uint32 = 0x00020000
	NtlmsspNegotiateExtendedSessionSecurity uint32 = 0x00080000
	NtlmsspNegotiateIdentify                uint32 = 0x00100000
	NtlmsspRequestNonNTSessionKey           uint32 = 0x00400000
	NtlmsspNegotiateTargetInfo              uint32 = 0x00800000
	NtlmsspNegotiateVersion                 uint32 = 0x02000000
	NtlmsspNegotiate128                     uint32 = 0x20000000
	NtlmsspNegotiateKeyExchange             uint32 = 0x40000000
	NtlmsspNegotiate56                      uint32 = 0x80000000
)

var flagNames = []struct {
	flag uint32
	name string
}{
	{NtlmsspNegotiateUnicode, "UNICODE"},
	{NtlmsspNegotiateOEM, "OEM"},
	{NtlmsspRequestTarget, "REQUEST_TARGET"},
	{NtlmsspNegotiateSign, "SIGN"},
	{NtlmsspNegotiateSeal, "SEAL"},
	{NtlmsspNegotiateDatagram, "DATAGRAM"},
	{NtlmsspNegotiateLmKey, "LM_KEY"},
	{NtlmsspNegotiateNTLM, "NTLM"},
	{NtlmsspNegotiateAnonymous, "ANONYMOUS"},
	{NtlmsspNegotiateOEMDomainSupplied, "OEM_DOMAIN_SUPPLIED"},
	{NtlmsspNegotiateOEMWorkstationSupplied, "OEM_WORKSTATION_SUPPLIED"},
	{NtlmsspNegotiateAlwaysSign, "ALWAYS_SIGN"},
	{NtlmsspTargetTypeDomain, "TARGET_TYPE_DOMAIN"},
	{NtlmsspTargetTypeServer, "TARGET_TYPE_SERVER"},
	{NtlmsspNegotiateExtendedSessionSecurity, "EXTENDED_SESSIONSECURITY"},
	{NtlmsspNegotiateIdentify, "IDENTIFY"},
	{NtlmsspRequestNonNTSessionKey, "REQUEST_NON_NT_SESSION_KEY"},
	{NtlmsspNegotiateTargetInfo, "TARGET_INFO"},
	{NtlmsspNegotiateVersion, "VERSION"},
	{NtlmsspNegotiate128, "128"},
	{NtlmsspNegotiateKeyExchange, "KEY_EXCH"},
	{NtlmsspNegotiate56, "56"},
}

// FlagNames renders a negotiate flag set as a "|" separated list
func FlagNames(flags uint32) string {
	var names []string
	for _, f := range flagNames {
		if flags&f.flag != 0 {
			names = append(names, f.name)
		}
	}
	if len(names) == 0 {
		return "NONE"
	}
	return strings.Join(names, "|")
}

// SecurityBuffer is the Len/MaxLen/Offset triple locating a payload field
type SecurityBuffer struct {
	Len    uint16
	MaxLen uint16
	Offset uint32
}

func readSecurityBuffer(data []byte, off int) SecurityBuffer {
	return SecurityBuffer{
		Len:    encoding.Uint16LE(data[off:]),
		MaxLen: encoding.Uint16LE(data[off+2:]),
		Offset: encoding.Uint32LE(data[off+4:]),
	}
}

func writeSecurityBuffer(buf []byte, off int, sb SecurityBuffer) {
	encoding.PutUint16LE(buf[off:], sb.Len)
	encoding.PutUint16LE(buf[off+2:], sb.MaxLen)
	encoding.PutUint32LE(buf[off+4:], sb.Offset)
}

// HasSignature reports whether data starts with "NTLMSSP\x00"
func HasSignature(data []byte) bool {
	return len(data) >= len(ntlmSignature) && bytes.Equal(data[:len(ntlmSignature)], ntlmSignature[:])
}

// checkHeader validates the NTLMSSP signature and message type
func checkHeader(data []byte, want uint32) error {
	if !HasSignature(data) {
		return fmt.Errorf("%w: %q", ErrInvalidSignature, data[:8])
	}
	if got := encoding.Uint32LE(data[8:12]); got != want {
		return fmt.Errorf("%w: type %d, want %d", ErrUnexpectedMessageType, got, want)
	}
	return nil
}

// VersionInfo is the 8-byte VERSION structure carried when NTLMSSP_NEGOTIATE_VERSION is set
type VersionInfo struct {
	Major    uint8
	Minor    uint8
	Build    uint16
	Revision uint8
}

func parseVersion(b []byte) VersionInfo {
	return VersionInfo{
		Major:    b[0],
		Minor:    b[1],
		Build:    encoding.Uint16LE(b[2:4]),
		Revision: b[7],
	}
}

// Marshal serializes the version; the three reserved bytes are zero
func (v VersionInfo) Marshal() []byte {
	buf := make([]byte, 8)
	buf[0] = v.Major
	buf[1] = v.Minor
	encoding.PutUint16LE(buf[2:4], v.Build)
	buf[7] = v.Revision
	return buf
}

// String renders the version as Windows does, e.g. "10.0.19041 rev 15"
func (v VersionInfo) String() string {
	return fmt.Sprintf("%d.%d.%d rev %d", v.Major, v.Minor, v.Build, v.Revision)
}

// AvPair is one attribute of a CHALLENGE_MESSAGE TargetInfo list
type AvPair struct {
	AvID  uint16
	Value []byte
}

// AV_PAIR IDs
const (
	MsvAvEOL             uint16 = 0x0000
	MsvAvNbComputerName  uint16 = 0x0001
	MsvAvNbDomainName    uint16 = 0x0002
	MsvAvDnsComputerName uint16 = 0x0003
	MsvAvDnsDomainName   uint16 = 0x0004
	MsvAvDnsTreeName     uint16 = 0x0005
	MsvAvFlags           uint16 = 0x0006
	MsvAvTimestamp       uint16 = 0x0007
	MsvAvSingleHost      uint16 = 0x0008
	MsvAvTargetName      uint16 = 0x0009
	MsvAvChannelBindings uint16 = 0x000A
)

// ParseAvPairs decodes a TargetInfo list up to MsvAvEOL. A truncated
// trailing pair is dropped.
func ParseAvPairs(data []byte) []AvPair {
	var pairs []AvPair

	for len(data) >= 4 {
		id := encoding.Uint16LE(data[0:2])
		n := int(encoding.Uint16LE(data[2:4]))
		data = data[4:]

		if id == MsvAvEOL || n > len(data) {
			break
		}
		pairs = append(pairs, AvPair{AvID: id, Value: data[:n]})
		data = data[n:]
	}

	return pairs
}

// MarshalAvPairs serializes pairs followed by MsvAvEOL
func MarshalAvPairs(pairs []AvPair) []byte {
	var buf []byte
	for _, p := range pairs {
		buf = binary.LittleEndian.AppendUint16(buf, p.AvID)
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(p.Value)))
		buf = append(buf, p.Value...)
	}
	return append(buf, 0, 0, 0, 0)
}
