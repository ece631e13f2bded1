package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/ineffectivecoder/gomonologue/pkg/ntlm"
)

// Console markers. Status output goes to stderr so stdout carries only hashes.
var (
	infoMark    = color.New(color.FgCyan).SprintFunc()
	successMark = color.New(color.Bold, color.FgGreen).SprintFunc()
	errorMark   = color.New(color.Bold, color.FgRed).SprintFunc()
	warnMark    = color.New(color.FgYellow).SprintFunc()
	debugMark   = color.New(color.FgBlue).SprintFunc()
)

var console io.Writer = os.Stderr

func info_(format string, args ...interface{}) {
	fmt.Fprintf(console, infoMark("[*]")+" "+format+"\n", args...)
}

func success_(format string, args ...interface{}) {
	fmt.Fprintf(console, successMark("[+]")+" "+format+"\n", args...)
}

func error_(format string, args ...interface{}) {
	fmt.Fprintf(console, errorMark("[!]")+" "+format+"\n", args...)
}

func warn_(format string, args ...interface{}) {
	fmt.Fprintf(console, warnMark("[-]")+" "+format+"\n", args...)
}

func debug_(format string, args ...interface{}) {
	if flags.verbose {
		fmt.Fprintf(console, debugMark("[D]")+" "+format+"\n", args...)
	}
}

// usageError marks errors caused by bad command line input
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func usagef(format string, args ...interface{}) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func isUsageError(err error) bool {
	var uerr *usageError
	return errors.As(err, &uerr)
}

// writeResults prints one hash per line, or one JSON object per line
func writeResults(w io.Writer, results []ntlm.HashResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		for _, r := range results {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	}

	for _, r := range results {
		if _, err := fmt.Fprintln(w, r.Hash); err != nil {
			return err
		}
	}
	return nil
}

// appendResults appends results to path, creating it if needed
func appendResults(path string, results []ntlm.HashResult, asJSON bool) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}

	if err := writeResults(f, results, asJSON); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// emit writes results to stdout and, with -o, to the output file
func emit(results []ntlm.HashResult) error {
	for _, r := range results {
		success_("Captured %s hash", r.Version)
	}

	if err := writeResults(os.Stdout, results, flags.json); err != nil {
		return err
	}

	if flags.outfile != "" {
		if err := appendResults(flags.outfile, results, flags.json); err != nil {
			return err
		}
		info_("Appended %d hash(es) to %s", len(results), flags.outfile)
	}
	return nil
}
