package main

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"os"
	"strings"

	"github.com/ineffectivecoder/gomonologue/pkg/ntlm"
)

var errUndecodableToken = errors.New("token is neither hex nor base64")

func cmdParse(args []string) error {
	if len(args) != 1 {
		return usagef("parse needs exactly one token")
	}
	if flags.challenge == "" {
		return usagef("parse needs the server challenge (-c)")
	}

	challenge, err := ntlm.ParseChallenge(flags.challenge)
	if err != nil {
		return err
	}

	input := args[0]
	if data, rerr := os.ReadFile(input); rerr == nil {
		debug_("Read token from %s", input)
		input = string(data)
	}

	token, err := decodeToken(input)
	if err != nil {
		return err
	}

	msg, err := ntlm.ParseAuthenticateMessage(token)
	if err != nil {
		return err
	}

	info_("AUTHENTICATE_MESSAGE (%d bytes)", len(token))
	info_("  User:        %s", msg.User())
	info_("  Domain:      %s", msg.Domain())
	info_("  Workstation: %s", msg.WorkstationName())
	info_("  LM response: %d bytes", len(msg.LmChallengeResponse))
	info_("  NT response: %d bytes", len(msg.NtChallengeResponse))
	info_("  Flags:       %s", ntlm.FlagNames(msg.NegotiateFlags))
	if msg.NegotiateFlags&ntlm.NtlmsspNegotiateVersion != 0 {
		info_("  Version:     %s", msg.Version)
	}

	res, err := ntlm.FormatHash(msg, challenge)
	if err != nil {
		return err
	}
	return emit([]ntlm.HashResult{res})
}

// decodeToken accepts a hex or base64 token, optionally prefixed with the
// HTTP "NTLM " scheme
func decodeToken(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if len(s) > 5 && strings.EqualFold(s[:5], "NTLM ") {
		s = strings.TrimSpace(s[5:])
	}
	s = strings.Join(strings.Fields(s), "")

	var candidates [][]byte
	if b, err := hex.DecodeString(s); err == nil {
		candidates = append(candidates, b)
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		candidates = append(candidates, b)
	}

	// Input valid in both alphabets decodes to whichever carries the NTLMSSP signature
	for _, b := range candidates {
		if ntlm.HasSignature(b) {
			return b, nil
		}
	}
	if len(candidates) == 0 {
		return nil, errUndecodableToken
	}
	return candidates[0], nil
}
