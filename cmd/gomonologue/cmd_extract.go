package main

import (
	"errors"
	"fmt"

	"github.com/ineffectivecoder/gomonologue/pkg/monologue"
	"github.com/ineffectivecoder/gomonologue/pkg/ntlm"
	"github.com/ineffectivecoder/gomonologue/pkg/sspi"
)

func cmdExtract(args []string) error {
	if len(args) > 1 {
		return usagef("extract takes at most one challenge, got %d arguments", len(args))
	}

	challenge := flags.challenge
	if len(args) == 1 {
		challenge = args[0]
	}
	if challenge == "" {
		challenge = ntlm.DefaultChallenge
	}

	provider, err := sspi.NewProvider()
	if err != nil {
		return fmt.Errorf("load SSPI: %w", err)
	}

	info_("Running NTLM handshake with challenge %s", challenge)

	results, err := monologue.New(provider).Extract(challenge)
	if errors.Is(err, monologue.ErrNoCredentials) {
		warn_("%v", err)
		warn_("The current logon session has no NTLM credentials (network logon or protected user?)")
		return nil
	}
	if err != nil {
		return err
	}

	return emit(results)
}
