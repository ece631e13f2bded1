package monologue

import (
	"errors"
	"fmt"

	"github.com/ineffectivecoder/gomonologue/pkg/sspi"
)

// Extraction errors
var (
	ErrCredentialAcquisition = errors.New("credential acquisition failed")
	ErrHandshakeFailed       = errors.New("handshake step failed")
	ErrNoCredentials         = errors.New("no credentials available")
	ErrHandleLeak            = errors.New("SSPI handle not released")
)

// Step names a provider call in the handshake
type Step int

const (
	StepNegotiate Step = iota + 1 // client: produce NEGOTIATE_MESSAGE
	StepChallenge                 // server: produce CHALLENGE_MESSAGE
	StepResume                    // client: answer tampered challenge with AUTHENTICATE_MESSAGE
)

// String returns the step name
func (s Step) String() string {
	switch s {
	case StepNegotiate:
		return "negotiate"
	case StepChallenge:
		return "challenge"
	case StepResume:
		return "resume"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

// CredentialError reports a failed AcquireCredentialsHandle
type CredentialError struct {
	Package string
	Status  sspi.Status
}

// Error implements the error interface
func (e *CredentialError) Error() string {
	return fmt.Sprintf("%v for package %s: %s", ErrCredentialAcquisition, e.Package, e.Status)
}

// Unwrap returns ErrCredentialAcquisition
func (e *CredentialError) Unwrap() error {
	return ErrCredentialAcquisition
}

// HandshakeError reports a provider call that returned an unexpected status
type HandshakeError struct {
	Step        Step
	Status      sspi.Status
	ESSDisabled bool
}

// Error implements the error interface
func (e *HandshakeError) Error() string {
	msg := fmt.Sprintf("%v: %s returned %s", ErrHandshakeFailed, e.Step, e.Status)
	if e.Step == StepResume {
		if e.ESSDisabled {
			msg += " (extended session security disabled)"
		} else {
			msg += " (extended session security preserved)"
		}
	}
	return msg
}

// Unwrap returns ErrHandshakeFailed
func (e *HandshakeError) Unwrap() error {
	return ErrHandshakeFailed
}

// ReleaseError reports a handle the provider refused to release
type ReleaseError struct {
	Handle string
	Status sspi.Status
}

// Error implements the error interface
func (e *ReleaseError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrHandleLeak, e.Handle, e.Status)
}

// Unwrap returns ErrHandleLeak
func (e *ReleaseError) Unwrap() error {
	return ErrHandleLeak
}
