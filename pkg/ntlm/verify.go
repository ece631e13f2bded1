package ntlm

import (
	"bytes"
	"crypto/hmac"
	"encoding/hex"
	"fmt"
	"strings"
)

// Hash is a parsed NetNTLMv1 or NetNTLMv2 line
type Hash struct {
	Version   HashVersion
	User      string
	Domain    string
	Challenge []byte

	// NetNTLMv1
	LmResponse []byte
	NtResponse []byte

	// NetNTLMv2
	NTProof []byte
	Blob    []byte
}

// ParseHash parses a line produced by FormatHash
func ParseHash(line string) (*Hash, error) {
	parts := strings.Split(strings.TrimSpace(line), ":")
	if len(parts) != 6 || parts[1] != "" {
		return nil, fmt.Errorf("%w: expected user::domain:x:y:z", ErrInvalidHash)
	}

	fields := make([][]byte, 3)
	for i, p := range parts[3:] {
		b, err := hex.DecodeString(p)
		if err != nil {
			return nil, fmt.Errorf("%w: field %d: %v", ErrInvalidHash, i+4, err)
		}
		fields[i] = b
	}

	h := &Hash{User: parts[0], Domain: parts[2]}

	switch {
	case len(fields[0]) == ntlmv1ResponseLength && len(fields[1]) == ntlmv1ResponseLength && len(fields[2]) == 8:
		h.Version = NetNTLMv1
		h.LmResponse = fields[0]
		h.NtResponse = fields[1]
		h.Challenge = fields[2]
	case len(fields[0]) == 8 && len(fields[1]) == ntProofLength && len(fields[2]) > 0:
		h.Version = NetNTLMv2
		h.Challenge = fields[0]
		h.NTProof = fields[1]
		h.Blob = fields[2]
	default:
		return nil, fmt.Errorf("%w: unrecognised field lengths %d/%d/%d",
			ErrInvalidHash, len(fields[0]), len(fields[1]), len(fields[2]))
	}

	return h, nil
}

// ClientChallenge returns the client challenge of an extended session security
// NetNTLMv1 response (LM field = client challenge + 16 zero bytes), or nil.
func (h *Hash) ClientChallenge() []byte {
	if h.Version != NetNTLMv1 || len(h.LmResponse) != ntlmv1ResponseLength {
		return nil
	}
	if !bytes.Equal(h.LmResponse[8:], make([]byte, 16)) {
		return nil
	}
	return h.LmResponse[:8]
}

// Verify reports whether password produces the captured response
func (h *Hash) Verify(password string) bool {
	ntHash := NTHash(password)

	switch h.Version {
	case NetNTLMv1:
		return hmac.Equal(NTLMv1Response(ntHash, h.Challenge, h.ClientChallenge()), h.NtResponse)
	case NetNTLMv2:
		v2 := NTLMv2Hash(ntHash, h.User, h.Domain)
		return hmac.Equal(ntProof(v2, h.Challenge, h.Blob), h.NTProof)
	default:
		return false
	}
}
