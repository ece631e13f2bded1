package encoding

import (
	"bytes"
	"testing"
)

func TestUTF16LERoundTrip(t *testing.T) {
	tests := []string{"", "alice", "CORP", "Jürgen", "用户"}

	for _, s := range tests {
		got := FromUTF16LE(ToUTF16LE(s))
		if got != s {
			t.Errorf("round trip of %q returned %q", s, got)
		}
	}
}

func TestToUTF16LE(t *testing.T) {
	got := ToUTF16LE("AB")
	want := []byte{'A', 0, 'B', 0}
	if !bytes.Equal(got, want) {
		t.Errorf("ToUTF16LE(\"AB\") = %x, want %x", got, want)
	}
}

func TestFromUTF16LEOddLength(t *testing.T) {
	got := FromUTF16LE([]byte{'a', 0, 'b'})
	if got != "a" {
		t.Errorf("expected trailing odd byte to be dropped, got %q", got)
	}
}

func TestTrimTerminators(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"alice", "alice"},
		{"alice\x00", "alice"},
		{"alice\x00\x00junk", "alice"},
		{"\x00", ""},
	}

	for _, tt := range tests {
		if got := TrimTerminators(tt.input); got != tt.expected {
			t.Errorf("TrimTerminators(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestUint32LE(t *testing.T) {
	buf := make([]byte, 4)
	PutUint32LE(buf, 0xDEADBEEF)

	if buf[0] != 0xEF || buf[1] != 0xBE || buf[2] != 0xAD || buf[3] != 0xDE {
		t.Errorf("PutUint32LE wrong encoding: %x", buf)
	}
	if Uint32LE(buf) != 0xDEADBEEF {
		t.Errorf("Uint32LE = %#x", Uint32LE(buf))
	}
}
