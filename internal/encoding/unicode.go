// Package encoding provides UTF-16LE string encoding utilities for NTLMSSP messages.
// NTLM carries domain, user and workstation names as UTF-16LE when Unicode is negotiated.
package encoding

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// ToUTF16LE converts a Go string to UTF-16LE encoded bytes.
func ToUTF16LE(s string) []byte {
	b, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil
	}
	return b
}

// FromUTF16LE converts UTF-16LE encoded bytes to a Go string.
// A trailing odd byte is dropped.
func FromUTF16LE(b []byte) string {
	if len(b) == 0 {
		return ""
	}

	if len(b)%2 != 0 {
		b = b[:len(b)-1]
	}

	s, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return string(s)
}

// TrimTerminators strips embedded NUL terminators and everything after the first one.
func TrimTerminators(s string) string {
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return s
}
