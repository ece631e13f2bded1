// Package sspi binds the Windows Security Support Provider Interface calls
// needed to run an NTLM handshake against the logged-on user.
package sspi

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned by NewProvider on platforms without SSPI
var ErrUnsupported = errors.New("SSPI is only available on Windows")

// Status is a SECURITY_STATUS value returned by the provider
type Status uint32

// Status codes the handshake interprets
const (
	StatusOK                Status = 0x00000000 // SEC_E_OK
	StatusContinueNeeded    Status = 0x00090312 // SEC_I_CONTINUE_NEEDED
	StatusCompleteNeeded    Status = 0x00090313 // SEC_I_COMPLETE_NEEDED
	StatusCompleteAndCont   Status = 0x00090314 // SEC_I_COMPLETE_AND_CONTINUE
	StatusInsufficientMem   Status = 0x80090300 // SEC_E_INSUFFICIENT_MEMORY
	StatusInvalidHandle     Status = 0x80090301 // SEC_E_INVALID_HANDLE
	StatusUnsupported       Status = 0x80090302 // SEC_E_UNSUPPORTED_FUNCTION
	StatusTargetUnknown     Status = 0x80090303 // SEC_E_TARGET_UNKNOWN
	StatusInternalError     Status = 0x80090304 // SEC_E_INTERNAL_ERROR
	StatusPackageNotFound   Status = 0x80090305 // SEC_E_SECPKG_NOT_FOUND
	StatusInvalidToken      Status = 0x80090308 // SEC_E_INVALID_TOKEN
	StatusLogonDenied       Status = 0x8009030C // SEC_E_LOGON_DENIED
	StatusNoCredentials     Status = 0x8009030E // SEC_E_NO_CREDENTIALS
	StatusBufferTooSmall    Status = 0x80090321 // SEC_E_BUFFER_TOO_SMALL
	StatusWrongPrincipal    Status = 0x80090322 // SEC_E_WRONG_PRINCIPAL
	StatusAlgorithmMismatch Status = 0x80090331 // SEC_E_ALGORITHM_MISMATCH
)

var statusNames = map[Status]string{
	StatusOK:                "SEC_E_OK",
	StatusContinueNeeded:    "SEC_I_CONTINUE_NEEDED",
	StatusCompleteNeeded:    "SEC_I_COMPLETE_NEEDED",
	StatusCompleteAndCont:   "SEC_I_COMPLETE_AND_CONTINUE",
	StatusInsufficientMem:   "SEC_E_INSUFFICIENT_MEMORY",
	StatusInvalidHandle:     "SEC_E_INVALID_HANDLE",
	StatusUnsupported:       "SEC_E_UNSUPPORTED_FUNCTION",
	StatusTargetUnknown:     "SEC_E_TARGET_UNKNOWN",
	StatusInternalError:     "SEC_E_INTERNAL_ERROR",
	StatusPackageNotFound:   "SEC_E_SECPKG_NOT_FOUND",
	StatusInvalidToken:      "SEC_E_INVALID_TOKEN",
	StatusLogonDenied:       "SEC_E_LOGON_DENIED",
	StatusNoCredentials:     "SEC_E_NO_CREDENTIALS",
	StatusBufferTooSmall:    "SEC_E_BUFFER_TOO_SMALL",
	StatusWrongPrincipal:    "SEC_E_WRONG_PRINCIPAL",
	StatusAlgorithmMismatch: "SEC_E_ALGORITHM_MISMATCH",
}

// String returns the SEC_* name and raw value
func (s Status) String() string {
	name, ok := statusNames[s]
	if !ok {
		name = "UNKNOWN"
	}
	return fmt.Sprintf("0x%08X (%s)", uint32(s), name)
}

// IsOK reports SEC_E_OK
func (s Status) IsOK() bool {
	return s == StatusOK
}

// Credential use flags for AcquireCredentialsHandle
const (
	CredentialInbound  uint32 = 0x1 // SECPKG_CRED_INBOUND
	CredentialOutbound uint32 = 0x2 // SECPKG_CRED_OUTBOUND
	CredentialBoth     uint32 = 0x3 // SECPKG_CRED_BOTH
)

// Context requirement flags
const (
	ReqConnection uint32 = 0x00000800 // ISC_REQ_CONNECTION / ASC_REQ_CONNECTION
)

// Data representation passed as TargetDataRep
const (
	NativeDataRep uint32 = 0x00000010 // SECURITY_NATIVE_DREP
)

// MaxTokenSize is the output buffer allocated per token
const MaxTokenSize = 12288

// PackageNTLM names the NTLM security package
const PackageNTLM = "NTLM"

// Handle mirrors SecHandle
type Handle struct {
	Lower uintptr
	Upper uintptr
}

// IsZero reports an unset handle
func (h Handle) IsZero() bool {
	return h.Lower == 0 && h.Upper == 0
}

// CredHandle is a credentials handle
type CredHandle Handle

// CtxtHandle is a security context handle
type CtxtHandle Handle

// IsZero reports an unset credentials handle
func (h CredHandle) IsZero() bool {
	return Handle(h).IsZero()
}

// IsZero reports an unset context handle
func (h CtxtHandle) IsZero() bool {
	return Handle(h).IsZero()
}

// Provider is the part of SSPI a local NTLM handshake drives.
// A nil ctx starts a new context; output tokens are trimmed to their real length.
type Provider interface {
	AcquireCredentialsHandle(pkg string, use uint32) (CredHandle, Status)
	InitializeSecurityContext(cred *CredHandle, ctx *CtxtHandle, req uint32, input []byte) (CtxtHandle, []byte, Status)
	AcceptSecurityContext(cred *CredHandle, ctx *CtxtHandle, req uint32, input []byte) (CtxtHandle, []byte, Status)
	DeleteSecurityContext(ctx *CtxtHandle) Status
	FreeCredentialsHandle(cred *CredHandle) Status
}
