// Package logger provides levelled logging for the tfask CLI.
// Debug, Info, Section and Timed output is printed only in verbose mode
// (--verbose). Warnings and errors are always printed so that per-question
// failures in an interactive session stay visible.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr

	// now is replaced in tests.
	now = time.Now
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// write prints one line. Lines with verboseOnly set are dropped unless
// verbose mode is on.
func write(verboseOnly bool, prefix, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if verboseOnly && !verbose {
		return
	}
	fmt.Fprintf(output, prefix+format+"\n", args...)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) { write(true, "[DEBUG] ", format, args...) }

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) { write(true, "[INFO] ", format, args...) }

// Warn prints a warning message.
func Warn(format string, args ...any) { write(false, "[WARN] ", format, args...) }

// Error prints an error message.
func Error(format string, args ...any) { write(false, "[ERROR] ", format, args...) }

// Section prints a section header if verbose mode is enabled.
func Section(name string) { write(true, "\n=== ", "%s ===", name) }

// Timed logs how long a stage took when the returned function is called:
//
//	defer logger.Timed("embed")()
func Timed(stage string) func() {
	start := now()
	return func() {
		write(true, "[INFO] ", "%s took %s", stage, now().Sub(start).Round(time.Millisecond))
	}
}
