//go:build windows

package sspi

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	secur32                        = windows.NewLazySystemDLL("secur32.dll")
	procAcquireCredentialsHandleW  = secur32.NewProc("AcquireCredentialsHandleW")
	procInitializeSecurityContextW = secur32.NewProc("InitializeSecurityContextW")
	procAcceptSecurityContext      = secur32.NewProc("AcceptSecurityContext")
	procDeleteSecurityContext      = secur32.NewProc("DeleteSecurityContext")
	procFreeCredentialsHandle      = secur32.NewProc("FreeCredentialsHandle")
)

const (
	secBufferVersion = 0 // SECBUFFER_VERSION
	secBufferToken   = 2 // SECBUFFER_TOKEN
)

// SecBuffer (sspi.h)
type secBuffer struct {
	cbBuffer   uint32
	bufferType uint32
	pvBuffer   *byte
}

// SecBufferDesc (sspi.h)
type secBufferDesc struct {
	ulVersion uint32
	cBuffers  uint32
	pBuffers  *secBuffer
}

// tokenDesc wraps a single token buffer. A nil or empty slice produces an
// empty descriptor.
type tokenDesc struct {
	buf  secBuffer
	desc secBufferDesc
}

func newTokenDesc(b []byte) *tokenDesc {
	t := &tokenDesc{}
	t.buf.bufferType = secBufferToken
	if len(b) > 0 {
		t.buf.cbBuffer = uint32(len(b))
		t.buf.pvBuffer = &b[0]
	}
	t.desc.ulVersion = secBufferVersion
	t.desc.cBuffers = 1
	t.desc.pBuffers = &t.buf
	return t
}

// tokenOutput trims the output buffer to the length the provider wrote. Failed
// calls leave no token.
func tokenOutput(out []byte, t *tokenDesc, status Status) []byte {
	if status != StatusOK && status != StatusContinueNeeded {
		return nil
	}
	n := t.buf.cbBuffer
	if n > uint32(len(out)) {
		n = uint32(len(out))
	}
	return out[:n]
}

type secur32Provider struct{}

// NewProvider returns the secur32.dll backed provider
func NewProvider() (Provider, error) {
	if err := secur32.Load(); err != nil {
		return nil, err
	}
	return &secur32Provider{}, nil
}

// AcquireCredentialsHandle acquires a handle for the logged-on user
func (p *secur32Provider) AcquireCredentialsHandle(pkg string, use uint32) (CredHandle, Status) {
	var cred CredHandle
	var expiry windows.Filetime

	pkgName, err := windows.UTF16PtrFromString(pkg)
	if err != nil {
		return cred, StatusPackageNotFound
	}

	r, _, _ := procAcquireCredentialsHandleW.Call(
		0,                                // pszPrincipal
		uintptr(unsafe.Pointer(pkgName)), // pszPackage
		uintptr(use),                     // fCredentialUse
		0,                                // pvLogonId
		0,                                // pAuthData (ambient identity)
		0,                                // pGetKeyFn
		0,                                // pvGetKeyArgument
		uintptr(unsafe.Pointer(&cred)),   // phCredential
		uintptr(unsafe.Pointer(&expiry)), // ptsExpiry
	)
	return cred, Status(uint32(r))
}

// InitializeSecurityContext runs one client step of the handshake
func (p *secur32Provider) InitializeSecurityContext(cred *CredHandle, ctx *CtxtHandle, req uint32, input []byte) (CtxtHandle, []byte, Status) {
	var newCtx CtxtHandle
	var attrs uint32
	var expiry windows.Filetime

	out := make([]byte, MaxTokenSize)
	outDesc := newTokenDesc(out)

	var inPtr uintptr
	var inDesc *tokenDesc
	if input != nil {
		inDesc = newTokenDesc(input)
		inPtr = uintptr(unsafe.Pointer(&inDesc.desc))
	}

	var ctxPtr uintptr
	if ctx != nil {
		newCtx = *ctx
		ctxPtr = uintptr(unsafe.Pointer(ctx))
	}

	r, _, _ := procInitializeSecurityContextW.Call(
		uintptr(unsafe.Pointer(cred)),
		ctxPtr,
		0, // pszTargetName
		uintptr(req),
		0, // Reserved1
		uintptr(NativeDataRep),
		inPtr,
		0, // Reserved2
		uintptr(unsafe.Pointer(&newCtx)),
		uintptr(unsafe.Pointer(&outDesc.desc)),
		uintptr(unsafe.Pointer(&attrs)),
		uintptr(unsafe.Pointer(&expiry)),
	)
	runtime.KeepAlive(inDesc)
	runtime.KeepAlive(ctx)

	status := Status(uint32(r))
	return newCtx, tokenOutput(out, outDesc, status), status
}

// AcceptSecurityContext runs one server step of the handshake
func (p *secur32Provider) AcceptSecurityContext(cred *CredHandle, ctx *CtxtHandle, req uint32, input []byte) (CtxtHandle, []byte, Status) {
	var newCtx CtxtHandle
	var attrs uint32
	var expiry windows.Filetime

	out := make([]byte, MaxTokenSize)
	outDesc := newTokenDesc(out)
	inDesc := newTokenDesc(input)

	var ctxPtr uintptr
	if ctx != nil {
		newCtx = *ctx
		ctxPtr = uintptr(unsafe.Pointer(ctx))
	}

	r, _, _ := procAcceptSecurityContext.Call(
		uintptr(unsafe.Pointer(cred)),
		ctxPtr,
		uintptr(unsafe.Pointer(&inDesc.desc)),
		uintptr(req),
		uintptr(NativeDataRep),
		uintptr(unsafe.Pointer(&newCtx)),
		uintptr(unsafe.Pointer(&outDesc.desc)),
		uintptr(unsafe.Pointer(&attrs)),
		uintptr(unsafe.Pointer(&expiry)),
	)
	runtime.KeepAlive(ctx)

	status := Status(uint32(r))
	return newCtx, tokenOutput(out, outDesc, status), status
}

// DeleteSecurityContext releases a context handle
func (p *secur32Provider) DeleteSecurityContext(ctx *CtxtHandle) Status {
	r, _, _ := procDeleteSecurityContext.Call(uintptr(unsafe.Pointer(ctx)))
	return Status(uint32(r))
}

// FreeCredentialsHandle releases a credentials handle
func (p *secur32Provider) FreeCredentialsHandle(cred *CredHandle) Status {
	r, _, _ := procFreeCredentialsHandle.Call(uintptr(unsafe.Pointer(cred)))
	return Status(uint32(r))
}
