package ntlm

import (
	"fmt"

	"github.com/ineffectivecoder/gomonologue/internal/encoding"
)

const negotiateMinLength = 16

// NegotiateMessage is a decoded NEGOTIATE_MESSAGE (type 1). The orchestrator
// only reads it for diagnostics.
type NegotiateMessage struct {
	NegotiateFlags    uint32
	DomainNameFields  SecurityBuffer
	WorkstationFields SecurityBuffer
	Version           VersionInfo
}

// ParseNegotiateMessage decodes a NEGOTIATE_MESSAGE. The domain and
// workstation buffers and the version are optional trailers.
func ParseNegotiateMessage(data []byte) (*NegotiateMessage, error) {
	if len(data) < negotiateMinLength {
		return nil, fmt.Errorf("%w: negotiate is %d bytes", ErrMessageTooShort, len(data))
	}
	if err := checkHeader(data, NtLmNegotiate); err != nil {
		return nil, err
	}

	m := &NegotiateMessage{NegotiateFlags: encoding.Uint32LE(data[12:16])}

	if len(data) >= 32 {
		m.DomainNameFields = readSecurityBuffer(data, 16)
		m.WorkstationFields = readSecurityBuffer(data, 24)
	}
	if len(data) >= 40 && m.NegotiateFlags&NtlmsspNegotiateVersion != 0 {
		m.Version = parseVersion(data[32:40])
	}

	return m, nil
}
