package ntlm

import (
	"errors"
	"fmt"
)

// Common NTLM errors
var (
	ErrMalformedAuthMessage   = errors.New("malformed authenticate message")
	ErrUnclassifiableResponse = errors.New("unclassifiable NT response length")
	ErrChallengeTooShort      = errors.New("challenge message too short")
	ErrInvalidChallenge       = errors.New("challenge must be 16 hex characters")
	ErrInvalidHash            = errors.New("invalid NetNTLM hash line")
	ErrInvalidSignature       = errors.New("invalid NTLMSSP signature")
	ErrUnexpectedMessageType  = errors.New("unexpected NTLMSSP message type")
	ErrMessageTooShort        = errors.New("NTLMSSP message too short")
)

// MalformedMessageError reports a security buffer that points outside the message
type MalformedMessageError struct {
	Field  string
	Offset uint32
	Length uint16
	Size   int
}

// Error implements the error interface
func (e *MalformedMessageError) Error() string {
	if e.Field == "header" {
		return fmt.Sprintf("%v: header needs %d bytes, message is %d", ErrMalformedAuthMessage, e.Length, e.Size)
	}
	return fmt.Sprintf("%v: %s [%d, %d) exceeds message size %d",
		ErrMalformedAuthMessage, e.Field, e.Offset, uint64(e.Offset)+uint64(e.Length), e.Size)
}

// Unwrap returns ErrMalformedAuthMessage
func (e *MalformedMessageError) Unwrap() error {
	return ErrMalformedAuthMessage
}

// UnclassifiableLengthError reports an NT response that is neither NTLMv1 nor NTLMv2
type UnclassifiableLengthError struct {
	Length int
}

// Error implements the error interface
func (e *UnclassifiableLengthError) Error() string {
	return fmt.Sprintf("%v: %d bytes", ErrUnclassifiableResponse, e.Length)
}

// Unwrap returns ErrUnclassifiableResponse
func (e *UnclassifiableLengthError) Unwrap() error {
	return ErrUnclassifiableResponse
}
