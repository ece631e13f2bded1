package ntlm

import (
	"github.com/ineffectivecoder/gomonologue/internal/encoding"
)

// AUTHENTICATE_MESSAGE header positions
const (
	authLmFieldsOffset          = 12
	authNtFieldsOffset          = 20
	authDomainFieldsOffset      = 28
	authUserFieldsOffset        = 36
	authWorkstationFieldsOffset = 44
	authSessionKeyFieldsOffset  = 52
	authFlagsOffset             = 60
	authVersionOffset           = 64

	// authMinHeaderLength covers every field through UserNameFields
	authMinHeaderLength  = authWorkstationFieldsOffset
	authFullHeaderLength = authVersionOffset
	authMICHeaderLength  = 88
)

// AuthenticateMessage represents NTLMSSP Type 3 message (AUTHENTICATE_MESSAGE)
type AuthenticateMessage struct {
	Signature                       [8]byte
	MessageType                     uint32 // Always 3
	LmChallengeResponseFields       SecurityBuffer
	NtChallengeResponseFields       SecurityBuffer
	DomainNameFields                SecurityBuffer
	UserNameFields                  SecurityBuffer
	WorkstationFields               SecurityBuffer
	EncryptedRandomSessionKeyFields SecurityBuffer
	NegotiateFlags                  uint32
	Version                         VersionInfo
	MIC                             [16]byte

	// Payload data
	LmChallengeResponse       []byte
	NtChallengeResponse       []byte
	DomainName                []byte
	UserName                  []byte
	Workstation               []byte
	EncryptedRandomSessionKey []byte
}

// ParseAuthenticateMessage decodes a Type 3 message. Only the security buffer
// bounds are validated; signature and message type are taken as the provider
// produced them.
func ParseAuthenticateMessage(data []byte) (*AuthenticateMessage, error) {
	if len(data) < authMinHeaderLength {
		return nil, &MalformedMessageError{Field: "header", Length: authMinHeaderLength, Size: len(data)}
	}

	m := &AuthenticateMessage{}
	copy(m.Signature[:], data[0:8])
	m.MessageType = encoding.Uint32LE(data[8:12])

	m.LmChallengeResponseFields = readSecurityBuffer(data, authLmFieldsOffset)
	m.NtChallengeResponseFields = readSecurityBuffer(data, authNtFieldsOffset)
	m.DomainNameFields = readSecurityBuffer(data, authDomainFieldsOffset)
	m.UserNameFields = readSecurityBuffer(data, authUserFieldsOffset)

	var err error
	if m.LmChallengeResponse, err = payload(data, "LmChallengeResponse", m.LmChallengeResponseFields); err != nil {
		return nil, err
	}
	if m.NtChallengeResponse, err = payload(data, "NtChallengeResponse", m.NtChallengeResponseFields); err != nil {
		return nil, err
	}
	if m.DomainName, err = payload(data, "DomainName", m.DomainNameFields); err != nil {
		return nil, err
	}
	if m.UserName, err = payload(data, "UserName", m.UserNameFields); err != nil {
		return nil, err
	}

	// Older providers may omit the trailing header fields
	if len(data) >= authFullHeaderLength {
		m.WorkstationFields = readSecurityBuffer(data, authWorkstationFieldsOffset)
		m.EncryptedRandomSessionKeyFields = readSecurityBuffer(data, authSessionKeyFieldsOffset)
		m.NegotiateFlags = encoding.Uint32LE(data[authFlagsOffset : authFlagsOffset+4])

		// Trailing payloads are informational; out of range leaves them empty
		if b, err := payload(data, "Workstation", m.WorkstationFields); err == nil {
			m.Workstation = b
		}
		if b, err := payload(data, "EncryptedRandomSessionKey", m.EncryptedRandomSessionKeyFields); err == nil {
			m.EncryptedRandomSessionKey = b
		}
	}

	if len(data) >= authVersionOffset+8 && m.NegotiateFlags&NtlmsspNegotiateVersion != 0 {
		m.Version = parseVersion(data[authVersionOffset : authVersionOffset+8])
	}

	return m, nil
}

// payload copies the bytes a security buffer points at
func payload(data []byte, field string, sb SecurityBuffer) ([]byte, error) {
	end := uint64(sb.Offset) + uint64(sb.Len)
	if end > uint64(len(data)) {
		return nil, &MalformedMessageError{Field: field, Offset: sb.Offset, Length: sb.Len, Size: len(data)}
	}
	out := make([]byte, sb.Len)
	copy(out, data[sb.Offset:end])
	return out, nil
}

// Domain returns the domain name with terminators trimmed
func (m *AuthenticateMessage) Domain() string {
	return m.text(m.DomainName)
}

// User returns the user name with terminators trimmed
func (m *AuthenticateMessage) User() string {
	return m.text(m.UserName)
}

// WorkstationName returns the workstation name with terminators trimmed
func (m *AuthenticateMessage) WorkstationName() string {
	return m.text(m.Workstation)
}

// text decodes a name field. Messages without NegotiateFlags, or with Unicode
// negotiated, carry UTF-16LE; OEM names are returned as-is.
func (m *AuthenticateMessage) text(b []byte) string {
	if m.NegotiateFlags != 0 && m.NegotiateFlags&NtlmsspNegotiateUnicode == 0 {
		return encoding.TrimTerminators(string(b))
	}
	return encoding.TrimTerminators(encoding.FromUTF16LE(b))
}

// Marshal serializes the Type 3 message with a MIC field, laying out the payload
// in header order. Header security buffers are recomputed from the payload.
func (m *AuthenticateMessage) Marshal() []byte {
	payloadOffset := uint32(authMICHeaderLength)

	fields := []struct {
		sb   *SecurityBuffer
		data []byte
		at   int
	}{
		{&m.LmChallengeResponseFields, m.LmChallengeResponse, authLmFieldsOffset},
		{&m.NtChallengeResponseFields, m.NtChallengeResponse, authNtFieldsOffset},
		{&m.DomainNameFields, m.DomainName, authDomainFieldsOffset},
		{&m.UserNameFields, m.UserName, authUserFieldsOffset},
		{&m.WorkstationFields, m.Workstation, authWorkstationFieldsOffset},
		{&m.EncryptedRandomSessionKeyFields, m.EncryptedRandomSessionKey, authSessionKeyFieldsOffset},
	}

	for _, f := range fields {
		f.sb.Len = uint16(len(f.data))
		f.sb.MaxLen = uint16(len(f.data))
		f.sb.Offset = payloadOffset
		payloadOffset += uint32(len(f.data))
	}

	buf := make([]byte, payloadOffset)

	copy(buf[0:8], ntlmSignature[:])
	encoding.PutUint32LE(buf[8:12], NtLmAuthenticate)

	for _, f := range fields {
		writeSecurityBuffer(buf, f.at, *f.sb)
		copy(buf[f.sb.Offset:], f.data)
	}

	encoding.PutUint32LE(buf[authFlagsOffset:authFlagsOffset+4], m.NegotiateFlags)
	copy(buf[authVersionOffset:authVersionOffset+8], m.Version.Marshal())
	copy(buf[authVersionOffset+8:authMICHeaderLength], m.MIC[:])

	m.Signature = ntlmSignature
	m.MessageType = NtLmAuthenticate

	return buf
}
