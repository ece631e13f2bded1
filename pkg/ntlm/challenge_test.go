package ntlm

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ineffectivecoder/gomonologue/internal/encoding"
)

// syntheticChallenge builds a challenge message with every byte set to a distinct value
func syntheticChallenge(n int) []byte {
	msg := make([]byte, n)
	for i := range msg {
		msg[i] = byte(i*7 + 0x5A)
	}
	copy(msg[0:8], ntlmSignature[:])
	encoding.PutUint32LE(msg[8:12], NtLmChallenge)
	return msg
}

func TestTamperChallengeDisableESS(t *testing.T) {
	challenge, err := ParseChallenge(DefaultChallenge)
	if err != nil {
		t.Fatalf("ParseChallenge failed: %v", err)
	}

	for _, size := range []int{48, 56, 120} {
		in := syntheticChallenge(size)
		in[22] = 0xFF

		out, err := TamperChallenge(in, challenge, true)
		if err != nil {
			t.Fatalf("TamperChallenge(%d bytes) failed: %v", size, err)
		}

		if len(out) != len(in) {
			t.Errorf("length changed: %d -> %d", len(in), len(out))
		}
		if out[22] != in[22]&0xF7 {
			t.Errorf("byte 22 = %#x, want %#x", out[22], in[22]&0xF7)
		}
		want := []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}
		if !bytes.Equal(out[24:32], want) {
			t.Errorf("server challenge = %x, want %x", out[24:32], want)
		}
		if !bytes.Equal(out[32:48], make([]byte, 16)) {
			t.Errorf("context field not zeroed: %x", out[32:48])
		}
		if !bytes.Equal(out[:22], in[:22]) || out[23] != in[23] || !bytes.Equal(out[48:], in[48:]) {
			t.Error("bytes outside the tampered ranges changed")
		}
	}
}

func TestTamperChallengePreserveESS(t *testing.T) {
	in := syntheticChallenge(64)
	in[22] = 0x08

	out, err := TamperChallenge(in, [8]byte{1, 2, 3, 4, 5, 6, 7, 8}, false)
	if err != nil {
		t.Fatalf("TamperChallenge failed: %v", err)
	}
	if out[22] != 0x08 {
		t.Errorf("byte 22 = %#x, want ESS bit preserved", out[22])
	}
	if !bytes.Equal(out[24:32], []byte{1, 2, 3, 4, 5, 6, 7, 8}) {
		t.Errorf("server challenge = %x", out[24:32])
	}
}

func TestTamperChallengeDoesNotMutateInput(t *testing.T) {
	in := syntheticChallenge(48)
	orig := append([]byte(nil), in...)

	if _, err := TamperChallenge(in, [8]byte{}, true); err != nil {
		t.Fatalf("TamperChallenge failed: %v", err)
	}
	if !bytes.Equal(in, orig) {
		t.Error("input buffer was modified")
	}
}

func TestTamperChallengeTooShort(t *testing.T) {
	_, err := TamperChallenge(make([]byte, 47), [8]byte{}, true)
	if !errors.Is(err, ErrChallengeTooShort) {
		t.Errorf("expected ErrChallengeTooShort, got %v", err)
	}
}

func TestTamperChallengeClearsESSFlag(t *testing.T) {
	in := syntheticChallenge(56)
	flags := NtlmsspNegotiateUnicode | NtlmsspNegotiateNTLM | NtlmsspNegotiateExtendedSessionSecurity | NtlmsspNegotiateVersion
	in[20], in[21], in[22], in[23] = byte(flags), byte(flags>>8), byte(flags>>16), byte(flags>>24)

	out, err := TamperChallenge(in, [8]byte{}, true)
	if err != nil {
		t.Fatalf("TamperChallenge failed: %v", err)
	}

	m, err := ParseChallengeMessage(out)
	if err != nil {
		t.Fatalf("ParseChallengeMessage failed: %v", err)
	}
	if m.NegotiateFlags&NtlmsspNegotiateExtendedSessionSecurity != 0 {
		t.Errorf("ESS still set: %s", FlagNames(m.NegotiateFlags))
	}
	if m.NegotiateFlags != flags&^NtlmsspNegotiateExtendedSessionSecurity {
		t.Errorf("other flags changed: %#x", m.NegotiateFlags)
	}
}

func TestParseChallengeMessageInvalidSignature(t *testing.T) {
	msg := syntheticChallenge(48)
	copy(msg[0:8], "XXXXXXXX")

	if _, err := ParseChallengeMessage(msg); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestParseChallengeMessageTargetInfo(t *testing.T) {
	targetInfo := MarshalAvPairs([]AvPair{
		{AvID: MsvAvNbDomainName, Value: []byte{'C', 0, 'O', 0, 'R', 0, 'P', 0}},
	})

	msg := make([]byte, 56+len(targetInfo))
	copy(msg[0:8], ntlmSignature[:])
	msg[8] = NtLmChallenge
	writeSecurityBuffer(msg, 40, SecurityBuffer{Len: uint16(len(targetInfo)), MaxLen: uint16(len(targetInfo)), Offset: 56})
	copy(msg[56:], targetInfo)

	m, err := ParseChallengeMessage(msg)
	if err != nil {
		t.Fatalf("ParseChallengeMessage failed: %v", err)
	}
	if len(m.AvPairs) != 1 {
		t.Fatalf("got %d AV pairs, want 1", len(m.AvPairs))
	}
	if got := m.AvString(MsvAvNbDomainName); got != "CORP" {
		t.Errorf("AvString(MsvAvNbDomainName) = %q, want CORP", got)
	}
	if got := m.AvString(MsvAvDnsDomainName); got != "" {
		t.Errorf("AvString(MsvAvDnsDomainName) = %q, want empty", got)
	}
}

func TestParseChallengeMessageWrongType(t *testing.T) {
	msg := syntheticChallenge(48)
	msg[8] = NtLmAuthenticate

	if _, err := ParseChallengeMessage(msg); !errors.Is(err, ErrUnexpectedMessageType) {
		t.Errorf("expected ErrUnexpectedMessageType, got %v", err)
	}
}

func TestParseNegotiateMessage(t *testing.T) {
	msg := make([]byte, 40)
	copy(msg, ntlmSignature[:])
	msg[8] = NtLmNegotiate
	flags := NtlmsspNegotiateUnicode | NtlmsspNegotiateNTLM | NtlmsspNegotiateVersion
	encoding.PutUint32LE(msg[12:16], flags)
	copy(msg[32:40], VersionInfo{Major: 10, Build: 19041, Revision: 15}.Marshal())

	m, err := ParseNegotiateMessage(msg)
	if err != nil {
		t.Fatalf("ParseNegotiateMessage failed: %v", err)
	}
	if m.NegotiateFlags != flags {
		t.Errorf("flags = %s", FlagNames(m.NegotiateFlags))
	}
	if m.Version.String() != "10.0.19041 rev 15" {
		t.Errorf("Version = %s", m.Version)
	}

	if _, err := ParseNegotiateMessage(msg[:12]); !errors.Is(err, ErrMessageTooShort) {
		t.Errorf("expected ErrMessageTooShort, got %v", err)
	}
}

func TestFlagNames(t *testing.T) {
	if got := FlagNames(0); got != "NONE" {
		t.Errorf("FlagNames(0) = %q", got)
	}
	got := FlagNames(NtlmsspNegotiateUnicode | NtlmsspNegotiateExtendedSessionSecurity)
	if got != "UNICODE|EXTENDED_SESSIONSECURITY" {
		t.Errorf("FlagNames = %q", got)
	}
}
