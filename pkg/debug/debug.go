// Package debug provides global debug/verbose logging control
package debug

import (
	"fmt"
	"io"
	"os"
)

// Verbose controls whether debug output is enabled
var Verbose bool

// output is stderr so hash lines on stdout stay machine readable
var output io.Writer = os.Stderr

// SetOutput redirects debug output
func SetOutput(w io.Writer) {
	output = w
}

// Printf prints debug output if verbose mode is enabled
func Printf(format string, args ...interface{}) {
	if Verbose {
		fmt.Fprintf(output, "[DEBUG] "+format, args...)
	}
}
