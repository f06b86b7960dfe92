// Package debug provides conditional debug logging for casefile.
//
// Debug logging is enabled by setting the CASEFILE_DEBUG environment variable:
//
//	CASEFILE_DEBUG=1 casefile
//
// The TUI owns the terminal, so messages go to stderr or, when
// CASEFILE_DEBUG names a path, to that file. When disabled (default), all
// debug functions are no-ops.
package debug

import (
	"io"
	"log"
	"os"
	"time"
)

var (
	// enabled is true when CASEFILE_DEBUG env var is set
	enabled bool
	// logger writes with a [CASEFILE] prefix
	logger *log.Logger
)

func init() {
	v := os.Getenv("CASEFILE_DEBUG")
	if v == "" {
		return
	}
	var w io.Writer = os.Stderr
	if v != "1" && v != "true" {
		if f, err := os.OpenFile(v, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			w = f
		}
	}
	enabled = true
	logger = newLogger(w)
}

func newLogger(w io.Writer) *log.Logger {
	return log.New(w, "[CASEFILE] ", log.Ltime|log.Lmicroseconds)
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	enabled = e
	if e && logger == nil {
		logger = newLogger(os.Stderr)
	}
}

// SetOutput redirects debug output. Tests use it to capture messages.
func SetOutput(w io.Writer) {
	logger = newLogger(w)
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if !enabled {
		return
	}
	logger.Printf("%s took %v", name, d)
}

// LogIf writes a debug message only if the condition is true.
func LogIf(cond bool, format string, args ...any) {
	if !enabled || !cond {
		return
	}
	logger.Printf(format, args...)
}
