package crypto

import (
	"crypto/des"
)

// expandDESKey spreads 7 key bytes over 8, leaving the parity bit of each byte clear.
func expandDESKey(k []byte) []byte {
	return []byte{
		k[0] & 0xFE,
		(k[0]<<7 | k[1]>>1) & 0xFE,
		(k[1]<<6 | k[2]>>2) & 0xFE,
		(k[2]<<5 | k[3]>>3) & 0xFE,
		(k[3]<<4 | k[4]>>4) & 0xFE,
		(k[4]<<3 | k[5]>>5) & 0xFE,
		(k[5]<<2 | k[6]>>6) & 0xFE,
		k[6] << 1,
	}
}

// DESL computes the 24-byte NTLMv1 response: the 16-byte key is zero padded to 21
// bytes and split into three DES keys, each encrypting the 8-byte challenge.
func DESL(key, challenge []byte) []byte {
	padded := make([]byte, 21)
	copy(padded, key)

	out := make([]byte, 0, 24)
	for i := 0; i < 3; i++ {
		block, err := des.NewCipher(expandDESKey(padded[i*7 : i*7+7]))
		if err != nil {
			return nil
		}
		dst := make([]byte, 8)
		block.Encrypt(dst, challenge[:8])
		out = append(out, dst...)
	}
	return out
}
