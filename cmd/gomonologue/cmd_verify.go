package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/ineffectivecoder/gomonologue/pkg/ntlm"
)

var errNoMatch = errors.New("password does not match any hash")

func cmdVerify(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usagef("verify needs a hash or file and an optional password")
	}

	lines, err := hashLines(args[0])
	if err != nil {
		return err
	}

	var password string
	if len(args) == 2 {
		password = args[1]
	} else {
		if password, err = promptPassword(); err != nil {
			return err
		}
	}

	matched, err := verifyLines(lines, password)
	if err != nil {
		return err
	}
	if matched == 0 {
		return errNoMatch
	}
	return nil
}

// hashLines returns the lines of file arg, or arg itself when it is not a file
func hashLines(arg string) ([]string, error) {
	f, err := os.Open(arg)
	if err != nil {
		return []string{arg}, nil
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", arg, err)
	}
	return lines, nil
}

// verifyLines checks password against every line and returns the match count.
// Lines that do not parse are reported and skipped unless none parse.
func verifyLines(lines []string, password string) (int, error) {
	var matched, parsed int
	var lastErr error

	for _, line := range lines {
		h, err := ntlm.ParseHash(line)
		if err != nil {
			warn_("Skipping line: %v", err)
			lastErr = err
			continue
		}
		parsed++

		if h.Verify(password) {
			success_("%s %s\\%s: password matches", h.Version, h.Domain, h.User)
			matched++
		} else {
			warn_("%s %s\\%s: no match", h.Version, h.Domain, h.User)
		}
	}

	if parsed == 0 && lastErr != nil {
		return 0, lastErr
	}
	return matched, nil
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	passBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(passBytes), nil
}
