package ntlm

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// DefaultChallenge is the server challenge substituted when none is given.
// Precomputed rainbow tables for NetNTLMv1 commonly assume it.
const DefaultChallenge = "1122334455667788"

const (
	ntlmv1ResponseLength = 24
	ntProofLength        = 16
)

// HashVersion identifies the crackable format of a captured response
type HashVersion int

const (
	NetNTLMv1 HashVersion = iota + 1
	NetNTLMv2
)

// String returns the conventional format name
func (v HashVersion) String() string {
	switch v {
	case NetNTLMv1:
		return "NetNTLMv1"
	case NetNTLMv2:
		return "NetNTLMv2"
	default:
		return fmt.Sprintf("HashVersion(%d)", int(v))
	}
}

// MarshalText implements encoding.TextMarshaler
func (v HashVersion) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// HashResult is one formatted response ready for an offline cracker
type HashResult struct {
	Version HashVersion `json:"version"`
	Hash    string      `json:"hash"`
}

// ParseChallenge decodes a 16 hex character challenge. An empty string yields DefaultChallenge.
func ParseChallenge(s string) ([8]byte, error) {
	var challenge [8]byte

	s = strings.TrimSpace(s)
	if s == "" {
		s = DefaultChallenge
	}
	if len(s) != 16 {
		return challenge, fmt.Errorf("%w: got %d characters", ErrInvalidChallenge, len(s))
	}

	if _, err := hex.Decode(challenge[:], []byte(s)); err != nil {
		return challenge, fmt.Errorf("%w: %v", ErrInvalidChallenge, err)
	}
	return challenge, nil
}

// Classify determines the response version from the NT response length
func Classify(ntResponse []byte) (HashVersion, error) {
	switch {
	case len(ntResponse) == ntlmv1ResponseLength:
		return NetNTLMv1, nil
	case len(ntResponse) > ntlmv1ResponseLength:
		return NetNTLMv2, nil
	default:
		return 0, &UnclassifiableLengthError{Length: len(ntResponse)}
	}
}

// SplitNTLMv2 splits an NTLMv2 response into its NTProofStr and client blob
func SplitNTLMv2(ntResponse []byte) (proof, blob []byte) {
	if len(ntResponse) < ntProofLength {
		return ntResponse, nil
	}
	return ntResponse[:ntProofLength], ntResponse[ntProofLength:]
}

// FormatHash renders a decoded AUTHENTICATE_MESSAGE as a hashcat/john line:
//
//	NetNTLMv1: user::domain:lm:nt:challenge
//	NetNTLMv2: user::domain:challenge:ntproof:blob
func FormatHash(m *AuthenticateMessage, challenge [8]byte) (HashResult, error) {
	version, err := Classify(m.NtChallengeResponse)
	if err != nil {
		return HashResult{}, err
	}

	user := m.User()
	domain := m.Domain()
	challengeHex := hex.EncodeToString(challenge[:])

	var line string
	switch version {
	case NetNTLMv1:
		line = fmt.Sprintf("%s::%s:%s:%s:%s", user, domain,
			hex.EncodeToString(m.LmChallengeResponse),
			hex.EncodeToString(m.NtChallengeResponse),
			challengeHex)
	case NetNTLMv2:
		proof, blob := SplitNTLMv2(m.NtChallengeResponse)
		line = fmt.Sprintf("%s::%s:%s:%s:%s", user, domain,
			challengeHex,
			hex.EncodeToString(proof),
			hex.EncodeToString(blob))
	}

	return HashResult{Version: version, Hash: line}, nil
}
