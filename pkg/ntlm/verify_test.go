package ntlm

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/ineffectivecoder/gomonologue/internal/encoding"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

// MS-NLMP 4.2.2: NTLMv1 without extended session security
func TestVerifyNTLMv1(t *testing.T) {
	line := "User::Domain:" +
		"98def7b87f88aa5dafe2df779688a172def11c7d5ccdef13:" +
		"67c43011f30298a2ad35ece64f16331c44bdbed927841f94:" +
		"0123456789abcdef"

	h, err := ParseHash(line)
	if err != nil {
		t.Fatalf("ParseHash failed: %v", err)
	}
	if h.Version != NetNTLMv1 {
		t.Fatalf("Version = %v", h.Version)
	}
	if h.ClientChallenge() != nil {
		t.Error("unexpected client challenge")
	}
	if !h.Verify("Password") {
		t.Error("expected Password to verify")
	}
	if h.Verify("password") {
		t.Error("expected wrong password to fail")
	}
}

// MS-NLMP 4.2.3: NTLMv1 with extended session security
func TestVerifyNTLMv1ESS(t *testing.T) {
	line := "User::Domain:" +
		"aaaaaaaaaaaaaaaa00000000000000000000000000000000:" +
		"7537f803ae367128ca458204bde7caf81e97ed2683267232:" +
		"0123456789abcdef"

	h, err := ParseHash(line)
	if err != nil {
		t.Fatalf("ParseHash failed: %v", err)
	}
	if hex.EncodeToString(h.ClientChallenge()) != "aaaaaaaaaaaaaaaa" {
		t.Errorf("ClientChallenge = %x", h.ClientChallenge())
	}
	if !h.Verify("Password") {
		t.Error("expected Password to verify")
	}
}

// MS-NLMP 4.2.4: NTLMv2
func TestVerifyNTLMv2KnownAnswer(t *testing.T) {
	ntHash := NTHash("Password")
	v2 := NTLMv2Hash(ntHash, "User", "Domain")
	if hex.EncodeToString(v2) != "0c868a403bfd7a93a3001ef22ef02e3f" {
		t.Fatalf("NTLMv2Hash = %x", v2)
	}

	targetInfo := MarshalAvPairs([]AvPair{
		{AvID: MsvAvNbDomainName, Value: encoding.ToUTF16LE("Domain")},
		{AvID: MsvAvNbComputerName, Value: encoding.ToUTF16LE("Server")},
	})
	resp := NTLMv2Response(v2, mustHex(t, "0123456789abcdef"), mustHex(t, "aaaaaaaaaaaaaaaa"), make([]byte, 8), targetInfo)

	proof, blob := SplitNTLMv2(resp)
	if hex.EncodeToString(proof) != "68cd0ab851e51c96aabc927bebef6a1c" {
		t.Errorf("NTProofStr = %x", proof)
	}

	msg := newAuthenticateMessage("User", "Domain", make([]byte, 24), resp)
	res, err := FormatHash(msg, [8]byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef})
	if err != nil {
		t.Fatalf("FormatHash failed: %v", err)
	}

	h, err := ParseHash(res.Hash)
	if err != nil {
		t.Fatalf("ParseHash failed: %v", err)
	}
	if h.Version != NetNTLMv2 || hex.EncodeToString(h.Blob) != hex.EncodeToString(blob) {
		t.Fatalf("parsed %v blob %x", h.Version, h.Blob)
	}
	if !h.Verify("Password") {
		t.Error("expected Password to verify")
	}
	if h.Verify("Passw0rd") {
		t.Error("expected wrong password to fail")
	}
}

func TestVerifyNTLMv1RoundTrip(t *testing.T) {
	challenge, _ := ParseChallenge(DefaultChallenge)
	nt := NTLMv1Response(NTHash("Summer2024!"), challenge[:], nil)

	msg := newAuthenticateMessage("alice", "CORP", nt, nt)
	res, err := FormatHash(msg, challenge)
	if err != nil {
		t.Fatalf("FormatHash failed: %v", err)
	}

	h, err := ParseHash(res.Hash)
	if err != nil {
		t.Fatalf("ParseHash failed: %v", err)
	}
	if !h.Verify("Summer2024!") {
		t.Error("expected round trip to verify")
	}
}

func TestParseHashInvalid(t *testing.T) {
	tests := []string{
		"",
		"alice:CORP:aa:bb:cc",
		"alice::CORP:zz:bb:cc",
		"alice::CORP:00:00:00",
		"alice:x:CORP:1122334455667788:00000000000000000000000000000000:0101",
	}

	for _, line := range tests {
		if _, err := ParseHash(line); !errors.Is(err, ErrInvalidHash) {
			t.Errorf("ParseHash(%q) error = %v, want ErrInvalidHash", line, err)
		}
	}
}
