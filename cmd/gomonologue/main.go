package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mjwhitta/cli"
	"golang.org/x/term"

	"github.com/ineffectivecoder/gomonologue/pkg/debug"
	"github.com/ineffectivecoder/gomonologue/pkg/ntlm"
)

// Version info
var version = "0.1.0"

// Exit codes
const (
	ExitSuccess = iota
	ExitError
	ExitMissingArg
)

// Global flags
var flags struct {
	challenge string
	outfile   string
	json      bool
	noColor   bool
	verbose   bool
}

func main() {
	// Configure CLI
	cli.Align = true
	cli.Authors = []string{"gomonologue authors"}
	cli.Banner = fmt.Sprintf("%s [OPTIONS] [command] [args...]", os.Args[0])
	cli.Info(
		"Internal Monologue - capture the logged-on user's NetNTLM",
		"response through a local SSPI handshake, no network traffic.",
	)
	cli.ExitStatus(
		"0 - Success (including sessions without NTLM credentials)",
		"1 - Error",
		"2 - Missing or unknown argument",
	)

	cli.Flag(&flags.challenge, "c", "challenge", "", "Server challenge, 16 hex chars (default "+ntlm.DefaultChallenge+")")
	cli.Flag(&flags.outfile, "o", "out", "", "Append hashes to file")
	cli.Flag(&flags.json, "j", "json", false, "Output JSON lines")
	cli.Flag(&flags.noColor, "n", "no-color", false, "Disable colored output")
	cli.Flag(&flags.verbose, "v", "verbose", false, "Verbose output")

	cli.Section("Commands",
		"  extract [challenge]        Capture a hash (default command)\n",
		"  parse <hex|base64>         Decode an AUTHENTICATE_MESSAGE (needs -c)\n",
		"  verify <hash|file> [pass]  Check a password against captured hashes",
	)

	cli.Parse()

	debug.Verbose = flags.verbose
	if flags.noColor || !term.IsTerminal(int(os.Stderr.Fd())) {
		color.NoColor = true
	}

	command, cmdArgs := resolveCommand(cli.Args())
	debug_("Command: %s %s", command, strings.Join(cmdArgs, " "))

	var err error
	switch command {
	case "extract":
		err = cmdExtract(cmdArgs)
	case "parse":
		err = cmdParse(cmdArgs)
	case "verify":
		err = cmdVerify(cmdArgs)
	case "help":
		cli.Usage(ExitSuccess)
	}

	if err != nil {
		error_("%v", err)
		if isUsageError(err) {
			cli.Usage(ExitMissingArg)
		}
		os.Exit(ExitError)
	}
}

// resolveCommand picks the subcommand. Anything that is not a known command
// name is an argument to extract, so a bare challenge works.
func resolveCommand(args []string) (string, []string) {
	if len(args) == 0 {
		return "extract", nil
	}

	switch cmd := strings.ToLower(args[0]); cmd {
	case "extract", "parse", "verify", "help":
		return cmd, args[1:]
	default:
		return "extract", args
	}
}
