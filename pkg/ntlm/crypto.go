package ntlm

import (
	"strings"
	"time"

	"github.com/ineffectivecoder/gomonologue/internal/crypto"
	"github.com/ineffectivecoder/gomonologue/internal/encoding"
)

// NTHash computes the NT hash from a password
// NT Hash = MD4(UTF-16LE(password))
func NTHash(password string) []byte {
	return crypto.MD4Hash(encoding.ToUTF16LE(password))
}

// NTLMv2Hash computes the NTLMv2 hash
// NTLMv2 Hash = HMAC-MD5(NT Hash, UPPERCASE(username) + domain)
func NTLMv2Hash(ntHash []byte, username, domain string) []byte {
	userDomain := encoding.ToUTF16LE(strings.ToUpper(username) + domain)
	return crypto.HMACMD5(ntHash, userDomain)
}

// NTLMv1Response computes the 24-byte NTLMv1 response. When clientChallenge is
// set the extended session security variant is used, which keys the response
// on MD5(serverChallenge + clientChallenge).
func NTLMv1Response(ntHash, serverChallenge, clientChallenge []byte) []byte {
	challenge := serverChallenge
	if len(clientChallenge) > 0 {
		challenge = crypto.MD5Hash(serverChallenge, clientChallenge)[:8]
	}
	return crypto.DESL(ntHash, challenge)
}

// NTLMv2Response computes the NTLMv2 response: NTProofStr followed by the client blob
func NTLMv2Response(ntlmv2Hash, serverChallenge, clientChallenge []byte,
	timestamp []byte, targetInfo []byte) []byte {

	blob := buildNTLMv2Blob(clientChallenge, timestamp, targetInfo)
	ntProofStr := ntProof(ntlmv2Hash, serverChallenge, blob)

	return append(ntProofStr, blob...)
}

// ntProof computes NTProofStr = HMAC-MD5(NTLMv2 Hash, ServerChallenge + Blob)
func ntProof(ntlmv2Hash, serverChallenge, blob []byte) []byte {
	data := make([]byte, 0, len(serverChallenge)+len(blob))
	data = append(data, serverChallenge...)
	data = append(data, blob...)
	return crypto.HMACMD5(ntlmv2Hash, data)
}

// buildNTLMv2Blob builds the NTLMv2 client blob/temp structure
func buildNTLMv2Blob(clientChallenge, timestamp, targetInfo []byte) []byte {
	// If no timestamp provided, use current time
	if len(timestamp) != 8 {
		timestamp = make([]byte, 8)
		// FILETIME: 100-nanosecond intervals since January 1, 1601
		ft := uint64(time.Now().UnixNano()/100 + 116444736000000000)
		encoding.PutUint64LE(timestamp, ft)
	}

	// Blob structure:
	// RespType (1) + HiRespType (1) + Reserved1 (2) + Reserved2 (4) +
	// TimeStamp (8) + ClientChallenge (8) + Reserved3 (4) + TargetInfo + Reserved4 (4)
	blob := make([]byte, 28+len(targetInfo)+4)

	blob[0] = 0x01 // RespType
	blob[1] = 0x01 // HiRespType
	copy(blob[8:16], timestamp)
	copy(blob[16:24], clientChallenge)
	copy(blob[28:], targetInfo)

	return blob
}
