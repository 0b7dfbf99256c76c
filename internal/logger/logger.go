// Package logger provides the CLI's stderr diagnostics. A poll run is
// quiet by default; --verbose narrates each phase of the cycle.
// Warnings (skipped keywords, failed record inserts) always print, so
// cron mail surfaces degraded runs even without --verbose.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables poll-cycle narration.
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

// SetOutput sets the output writer. Defaults to os.Stderr. Useful for
// testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Section marks the start of a poll phase, e.g. ingesting one keyword.
// Printed only in verbose mode.
func Section(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "==> "+format+"\n", args...)
	}
}

// Info prints a progress line under the current phase. Verbose only.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "    "+format+"\n", args...)
	}
}

// Debug prints fine-grained detail (watermarks, per-keyword counts).
// Verbose only.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "    .. "+format+"\n", args...)
	}
}

// Warn prints a warning. Unlike the other levels it is not gated on
// verbose: a keyword skipped over an upstream failure must be visible
// in a scheduled run's output.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(output, "warning: "+format+"\n", args...)
}
